package common

import (
	"context"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/objectcontext"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func newFakeClient(objects ...client.Object) client.Client {
	scheme := runtime.NewScheme()
	Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())

	return fake.NewClientBuilder().WithScheme(scheme).WithObjects(objects...).Build()
}

var _ = Describe("Common", func() {
	ctx := context.Background()

	Context("ShouldReconcile", func() {
		It("should reconcile an object that has not been picked up yet", func() {
			Expect(ShouldReconcile(danav1.None)).To(BeTrue())
		})

		It("should reconcile an object that is in progress", func() {
			Expect(ShouldReconcile(danav1.InProgress)).To(BeTrue())
		})

		It("should not reconcile a completed object", func() {
			Expect(ShouldReconcile(danav1.Complete)).To(BeFalse())
		})

		It("should not reconcile a failed object", func() {
			Expect(ShouldReconcile(danav1.Error)).To(BeFalse())
		})
	})

	Context("DeletionTimeStampExists", func() {
		It("should report an object with a deletion timestamp as being deleted", func() {
			deletionTime := metav1.Now()
			ns := corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-a", DeletionTimestamp: &deletionTime}}
			Expect(DeletionTimeStampExists(&ns)).To(BeTrue())
		})

		It("should report an object without a deletion timestamp as live", func() {
			ns := corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-a"}}
			Expect(DeletionTimeStampExists(&ns)).To(BeFalse())
		})
	})

	Context("ValidateNamespacesDiffer", func() {
		It("should allow a migration between two different namespaces", func() {
			response := ValidateNamespacesDiffer("ns-a", "ns-b")
			Expect(response.Allowed).To(BeTrue())
		})

		It("should deny a migration of a namespace onto itself", func() {
			response := ValidateNamespacesDiffer("ns-a", "ns-a")
			Expect(response.Allowed).To(BeFalse())
			Expect(response.Result.Message).To(ContainSubstring("forbidden to migrate namespace"))
		})
	})

	Context("ValidateNamespaceExist", func() {
		It("should allow when the namespace exists", func() {
			kClient := newFakeClient(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-a"}})

			nsObject, err := objectcontext.New(ctx, kClient, types.NamespacedName{Name: "ns-a"}, &corev1.Namespace{})
			Expect(err).NotTo(HaveOccurred())

			response := ValidateNamespaceExist(nsObject)
			Expect(response.Allowed).To(BeTrue())
		})

		It("should deny when the namespace does not exist", func() {
			kClient := newFakeClient()

			nsObject, err := objectcontext.New(ctx, kClient, types.NamespacedName{Name: "ns-a"}, &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "ns-a"}})
			Expect(err).NotTo(HaveOccurred())

			response := ValidateNamespaceExist(nsObject)
			Expect(response.Allowed).To(BeFalse())
			Expect(response.Result.Message).To(ContainSubstring("does not exist"))
		})
	})

	Context("ValidatePermissions", func() {
		It("should allow the controller service account without an access review", func() {
			reqUser := fmt.Sprintf("system:serviceaccount:%s:%s", danav1.NsmNamespace, danav1.NsmServiceAccount)
			response := ValidatePermissions(ctx, "ns-a", "ns-b", reqUser)
			Expect(response.Allowed).To(BeTrue())
		})
	})
})
