package e2e_tests

import (
	danav1 "github.com/dana-team/nsm/api/v1"
	. "github.com/dana-team/nsm/test/testutils"
	. "github.com/onsi/ginkgo/v2"
)

var _ = Describe("NamespaceMigration", func() {
	testPrefix := "nsm-test"
	var randPrefix string

	BeforeEach(func() {
		randPrefix = RandStr()

		CleanupTestMigrations(randPrefix)
		CleanupTestNamespaces(randPrefix)
		CleanupTestPersistentVolumes(randPrefix)
	})

	AfterEach(func() {
		CleanupTestMigrations(randPrefix)
		CleanupTestNamespaces(randPrefix)
		CleanupTestPersistentVolumes(randPrefix)
	})

	It("should migrate configmaps, secrets and deployments to the target namespace", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)

		CreateConfigMap("web-cfg", nsA, "mode", "fast")
		CreateSecret("web-token", nsA, "token", "s3cr3t")
		CreateDeployment("web", nsA, 2)

		nsmName := CreateMigration(nsA, nsB, "")

		// verify phase is complete before labeling it
		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		LabelTestingMigrations(nsmName, randPrefix)
		LabelTestingNs(nsB, randPrefix)

		// make sure the target namespace was created and marked as migrated
		FieldShouldContain("namespace", "", nsB, ".metadata.labels", danav1.MigratedLabel+":true")
		FieldShouldNotContain("namespace", "", nsA, ".metadata.labels", danav1.MigratedLabel)

		// the deployment moves while the configuration is copied and kept in the source
		FieldShouldContain("deployment", nsB, "web", ".spec.replicas", "2")
		ShouldNotExist("deployment", nsA, "web")
		FieldShouldContain("configmap", nsB, "web-cfg", ".data.mode", "fast")
		FieldShouldContain("configmap", nsA, "web-cfg", ".data.mode", "fast")
		FieldShouldContain("secret", nsB, "web-token", ".data.token", "czNjcjN0")
		FieldShouldContain("secret", nsA, "web-token", ".data.token", "czNjcjN0")

		FieldShouldContain("namespacemigration", "", nsmName, ".status.items", "Migrated")
		FieldShouldContain("namespacemigration", "", nsmName, ".metadata.annotations", "requester")
	})

	It("should move statefulsets and rebind their volumes to claims in the target namespace", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		pvName := GenerateE2EName("data", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)

		CreatePersistentVolume(pvName, randPrefix)
		CreatePersistentVolumeClaim("data-db", nsA, pvName)
		CreateStatefulSet("db", nsA, 3)

		nsmName := CreateMigration(nsA, nsB, "")

		// verify phase is complete before labeling it
		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		LabelTestingMigrations(nsmName, randPrefix)
		LabelTestingNs(nsB, randPrefix)

		// the statefulset comes back up in the target namespace with a single replica
		FieldShouldContain("statefulset", nsB, "db", ".spec.replicas", "1")
		ShouldNotExist("statefulset", nsA, "db")

		// the claim follows the statefulset and the volume binds to it again
		FieldShouldContain("pvc", nsB, "data-db", ".spec.volumeName", pvName)
		ShouldNotExist("pvc", nsA, "data-db")
		FieldShouldContain("pv", "", pvName, ".spec.claimRef.namespace", nsB)
		FieldShouldContain("pv", "", pvName, ".status.phase", "Bound")
	})

	It("should report already existing objects when a migration is run again", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)

		CreateConfigMap("app-cfg", nsA, "mode", "fast")

		nsmName := CreateMigration(nsA, nsB, "")

		// verify phase is complete before labeling it
		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		LabelTestingNs(nsB, randPrefix)

		// the configuration stays in the source namespace, so running the same migration
		// again finds it already in the target namespace
		MustRun("kubectl delete namespacemigration", nsmName)
		nsmName = CreateMigration(nsA, nsB, "")

		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		FieldShouldContain("namespacemigration", "", nsmName, ".status.items", "AlreadyExists")
		LabelTestingMigrations(nsmName, randPrefix)
	})

	It("should not create a namespacemigration for a namespace onto itself", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)

		ShouldNotCreateMigration(nsA, nsA, "")
	})

	It("should not create a namespacemigration when the source namespace does not exist", func() {
		nsA := GenerateE2EName("ghost", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)

		ShouldNotCreateMigration(nsA, nsB, "")
	})

	It("should not allow updating the namespaces of an existing namespacemigration", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		nsC := GenerateE2EName("other", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)

		nsmName := CreateMigration(nsA, nsB, "")

		// verify phase is complete before labeling it
		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		LabelTestingMigrations(nsmName, randPrefix)
		LabelTestingNs(nsB, randPrefix)

		MustNotRun("kubectl patch namespacemigration", nsmName, "--type merge", "-p", `"{"spec":{"targetNamespace":"`+nsC+`"}}"`)
	})

	It("should not create a namespacemigration for a user without permissions on the namespaces", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)
		CreateTestNamespace(nsB, randPrefix)

		userA := GenerateE2EUserName("user-a")
		GrantTestingUserMigrationRights(userA)

		ShouldNotCreateMigration(nsA, nsB, userA)
	})

	It("should add a requester annotation to the namespacemigration object with the account name", func() {
		nsA := GenerateE2EName("source", testPrefix, randPrefix)
		nsB := GenerateE2EName("target", testPrefix, randPrefix)
		CreateTestNamespace(nsA, randPrefix)
		CreateTestNamespace(nsB, randPrefix)

		userA := GenerateE2EUserName("user-a")
		GrantTestingUserMigrationRights(userA)
		GrantTestingUserAdmin(userA, nsA)
		GrantTestingUserAdmin(userA, nsB)

		nsmName := CreateMigration(nsA, nsB, userA)

		// verify phase is complete before labeling it
		FieldShouldContain("namespacemigration", "", nsmName, ".status.phase", "Complete")
		FieldShouldContain("namespacemigration", "", nsmName, ".metadata.annotations", userA)
		LabelTestingMigrations(nsmName, randPrefix)
	})
})
