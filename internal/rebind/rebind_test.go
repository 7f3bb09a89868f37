package rebind

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
)

func newFakeClientBuilder(objects ...client.Object) *fake.ClientBuilder {
	scheme := runtime.NewScheme()
	Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())

	return fake.NewClientBuilder().WithScheme(scheme).WithObjects(objects...)
}

func composeClaim(name, namespace, volumeName string) *corev1.PersistentVolumeClaim {
	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.PersistentVolumeClaimSpec{VolumeName: volumeName},
	}
}

func composeVolume(name string, phase corev1.PersistentVolumePhase, claim *corev1.PersistentVolumeClaim) *corev1.PersistentVolume {
	volume := corev1.PersistentVolume{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status:     corev1.PersistentVolumeStatus{Phase: phase},
	}
	if claim != nil {
		volume.Spec.ClaimRef = &corev1.ObjectReference{Name: claim.Name, Namespace: claim.Namespace}
	}

	return &volume
}

var _ = Describe("Rebind", func() {
	ctx := context.Background()

	Context("NewCoordinator", func() {
		It("should fall back to the default poll settings", func() {
			coordinator := NewCoordinator(newFakeClientBuilder().Build(), 0, 0)
			Expect(coordinator.MaxRetries).To(Equal(30))
			Expect(coordinator.SleepTimeout).To(Equal(1000))
		})

		It("should keep explicit poll settings", func() {
			coordinator := NewCoordinator(newFakeClientBuilder().Build(), 5, 10)
			Expect(coordinator.MaxRetries).To(Equal(5))
			Expect(coordinator.SleepTimeout).To(Equal(10))
		})
	})

	Context("Rebind", func() {
		It("should release the volume behind a bound claim", func() {
			claim := composeClaim("data", "ns-a", "pv-1")
			kClient := newFakeClientBuilder(claim, composeVolume("pv-1", corev1.VolumeAvailable, claim)).Build()
			coordinator := NewCoordinator(kClient, 1, 1)

			volumeName, err := coordinator.Rebind(ctx, claim)
			Expect(err).NotTo(HaveOccurred())
			Expect(volumeName).To(Equal("pv-1"))

			err = kClient.Get(ctx, types.NamespacedName{Name: "data", Namespace: "ns-a"}, &corev1.PersistentVolumeClaim{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())

			volume := corev1.PersistentVolume{}
			Expect(kClient.Get(ctx, types.NamespacedName{Name: "pv-1"}, &volume)).To(Succeed())
			Expect(volume.Spec.ClaimRef).To(BeNil())
		})

		It("should refuse a claim that has no bound volume", func() {
			claim := composeClaim("data", "ns-a", "")
			kClient := newFakeClientBuilder(claim).Build()
			coordinator := NewCoordinator(kClient, 1, 1)

			_, err := coordinator.Rebind(ctx, claim)
			Expect(errors.Is(err, ErrClaimNotBound)).To(BeTrue())

			Expect(kClient.Get(ctx, types.NamespacedName{Name: "data", Namespace: "ns-a"}, &corev1.PersistentVolumeClaim{})).To(Succeed())
		})

		It("should fail when the volume never becomes available", func() {
			claim := composeClaim("data", "ns-a", "pv-1")
			kClient := newFakeClientBuilder(claim, composeVolume("pv-1", corev1.VolumeBound, claim)).Build()
			coordinator := NewCoordinator(kClient, 2, 1)

			_, err := coordinator.Rebind(ctx, claim)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("did not become available"))

			err = kClient.Get(ctx, types.NamespacedName{Name: "data", Namespace: "ns-a"}, &corev1.PersistentVolumeClaim{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("should fail when the bound volume does not exist", func() {
			claim := composeClaim("data", "ns-a", "pv-missing")
			kClient := newFakeClientBuilder(claim).Build()
			coordinator := NewCoordinator(kClient, 2, 1)

			_, err := coordinator.Rebind(ctx, claim)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("did not become available"))
		})

		It("should continue past a claim that cannot be deleted", func() {
			claim := composeClaim("data", "ns-a", "pv-1")
			kClient := newFakeClientBuilder(claim, composeVolume("pv-1", corev1.VolumeAvailable, claim)).
				WithInterceptorFuncs(interceptor.Funcs{
					Delete: func(ctx context.Context, kClient client.WithWatch, object client.Object, opts ...client.DeleteOption) error {
						return errors.New("injected delete failure")
					},
				}).Build()
			coordinator := NewCoordinator(kClient, 1, 1)

			volumeName, err := coordinator.Rebind(ctx, claim)
			Expect(err).NotTo(HaveOccurred())
			Expect(volumeName).To(Equal("pv-1"))

			volume := corev1.PersistentVolume{}
			Expect(kClient.Get(ctx, types.NamespacedName{Name: "pv-1"}, &volume)).To(Succeed())
			Expect(volume.Spec.ClaimRef).To(BeNil())
		})
	})
})
