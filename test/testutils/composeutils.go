package testutils

import (
	"math/rand"
	"strconv"
	"time"
)

const namspacePrefix = "e2e"
const randStringLength = 8

// we use 120 seconds here because some tests run in parallel and there may be many namespaces to delete,
// and it may take a while
const propagationTime = 120
const eventuallyTimeout = 120

// GenerateE2EName generates a name for a namespace and labels it
func GenerateE2EName(nm, testPrefix, randPrefix string) string {
	prefix := namspacePrefix + "-" + testPrefix + "-" + randPrefix + "-"
	nm = prefix + nm

	return nm
}

// GenerateE2EUserName generates a name for a user
func GenerateE2EUserName(nm string) string {
	prefix := namspacePrefix + "-" + RandStr() + "-user-"
	nm = prefix + nm

	return nm
}

// RandStr generates a random string
func RandStr() string {
	charset := "abcdefghijklmnopqrstuvwxyz0123456789"
	rand.Seed(time.Now().UnixNano())

	b := make([]byte, randStringLength)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}

	return string(b)
}

// CreateTestNamespace creates a namespace and labels it as a test namespace
func CreateTestNamespace(nm, randPrefix string) {
	MustApplyYAML(generateNamespaceManifest(nm))
	RunShouldContain(nm, propagationTime, "kubectl get ns")
	LabelTestingNs(nm, randPrefix)
}

// CreateMigration creates the specified NamespaceMigration, impersonating a user when one
// is given, and returns its name
func CreateMigration(sourceNS, targetNS, user string) string {
	name := "from" + sourceNS + "to" + targetNS
	nsm := generateMigrationManifest(name, sourceNS, targetNS)
	if user == "" {
		MustApplyYAML(nsm)
	} else {
		MustApplyYAMLAsUser(nsm, user)
	}
	RunShouldContain(name, propagationTime, "kubectl get namespacemigration")
	return name
}

// ShouldNotCreateMigration should not be able to create the specified NamespaceMigration
func ShouldNotCreateMigration(sourceNS, targetNS, user string) {
	name := "from" + sourceNS + "to" + targetNS
	nsm := generateMigrationManifest(name, sourceNS, targetNS)
	if user == "" {
		MustNotApplyYAML(nsm)
	} else {
		MustNotApplyYAMLAsUser(nsm, user)
	}
	RunShouldNotContain(name, propagationTime, "kubectl get namespacemigration")
}

// CreateConfigMap creates a configmap with a single key-value pair in a namespace
func CreateConfigMap(nm, nsnm, key, value string) {
	MustApplyYAML(generateConfigMapManifest(nm, nsnm, key, value))
	RunShouldContain(nm, propagationTime, "kubectl get configmap", "-n", nsnm)
}

// CreateSecret creates a secret with a single key-value pair in a namespace
func CreateSecret(nm, nsnm, key, value string) {
	MustApplyYAML(generateSecretManifest(nm, nsnm, key, value))
	RunShouldContain(nm, propagationTime, "kubectl get secret", "-n", nsnm)
}

// CreateDeployment creates a deployment in a namespace
func CreateDeployment(nm, nsnm string, replicas int) {
	MustApplyYAML(generateDeploymentManifest(nm, nsnm, strconv.Itoa(replicas)))
	RunShouldContain(nm, propagationTime, "kubectl get deployment", "-n", nsnm)
}

// CreateStatefulSet creates a statefulset in a namespace
func CreateStatefulSet(nm, nsnm string, replicas int) {
	MustApplyYAML(generateStatefulSetManifest(nm, nsnm, strconv.Itoa(replicas)))
	RunShouldContain(nm, propagationTime, "kubectl get statefulset", "-n", nsnm)
}

// CreatePersistentVolume creates a persistentvolume and labels it as a test volume
func CreatePersistentVolume(nm, randPrefix string) {
	MustApplyYAML(generatePersistentVolumeManifest(nm))
	RunShouldContain(nm, propagationTime, "kubectl get pv")
	LabelTestingPersistentVolume(nm, randPrefix)
}

// CreatePersistentVolumeClaim creates a persistentvolumeclaim bound to a specific
// persistentvolume and waits for the bind to complete
func CreatePersistentVolumeClaim(nm, nsnm, volumeName string) {
	MustApplyYAML(generatePersistentVolumeClaimManifest(nm, nsnm, volumeName))
	FieldShouldContain("pvc", nsnm, nm, ".status.phase", "Bound")
}

// GrantTestingUserAdmin gives admin rolebinding to a user in a namespace
func GrantTestingUserAdmin(user, ns string) {
	MustRun("kubectl create rolebinding", "test-admin-"+user+"-"+ns, "--user", user, "--namespace", ns, "--clusterrole admin")
}

// GrantTestingUserMigrationRights gives a user permission to manage NamespaceMigration objects
func GrantTestingUserMigrationRights(user string) {
	MustRun("kubectl create clusterrole", "test-nsm-"+user, "--verb create,get,list", "--resource namespacemigrations")
	MustRun("kubectl create clusterrolebinding", "test-nsm-"+user, "--user", user, "--clusterrole", "test-nsm-"+user)
}

func generateNamespaceManifest(nm string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: v1
kind: Namespace
metadata:
  name: ` + nm + `
`
}

func generateMigrationManifest(nm, sourceNS, targetNS string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: dana.nsm.io/v1
kind: NamespaceMigration
metadata:
  name: ` + nm + `
spec:
  sourceNamespace: ` + sourceNS + `
  targetNamespace: ` + targetNS + `
`
}

func generateConfigMapManifest(nm, nsnm, key, value string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: v1
kind: ConfigMap
metadata:
  name: ` + nm + `
  namespace: ` + nsnm + `
data:
  ` + key + `: ` + value + `
`
}

func generateSecretManifest(nm, nsnm, key, value string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: v1
kind: Secret
metadata:
  name: ` + nm + `
  namespace: ` + nsnm + `
stringData:
  ` + key + `: ` + value + `
`
}

func generateDeploymentManifest(nm, nsnm, replicas string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: apps/v1
kind: Deployment
metadata:
  name: ` + nm + `
  namespace: ` + nsnm + `
spec:
  replicas: ` + replicas + `
  selector:
    matchLabels:
      app: ` + nm + `
  template:
    metadata:
      labels:
        app: ` + nm + `
    spec:
      containers:
        - name: nginx
          image: nginx:1.14.2
`
}

func generateStatefulSetManifest(nm, nsnm, replicas string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: apps/v1
kind: StatefulSet
metadata:
  name: ` + nm + `
  namespace: ` + nsnm + `
spec:
  replicas: ` + replicas + `
  serviceName: ` + nm + `
  selector:
    matchLabels:
      app: ` + nm + `
  template:
    metadata:
      labels:
        app: ` + nm + `
    spec:
      containers:
        - name: nginx
          image: nginx:1.14.2
`
}

func generatePersistentVolumeManifest(nm string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: v1
kind: PersistentVolume
metadata:
  name: ` + nm + `
spec:
  capacity:
    storage: 1Gi
  accessModes:
    - ReadWriteOnce
  persistentVolumeReclaimPolicy: Retain
  storageClassName: ""
  hostPath:
    path: /tmp/` + nm + `
`
}

func generatePersistentVolumeClaimManifest(nm, nsnm, volumeName string) string {
	return `# temp file created by namespacemigration_test.go
apiVersion: v1
kind: PersistentVolumeClaim
metadata:
  name: ` + nm + `
  namespace: ` + nsnm + `
spec:
  storageClassName: ""
  volumeName: ` + volumeName + `
  accessModes:
    - ReadWriteOnce
  resources:
    requests:
      storage: 1Gi
`
}
