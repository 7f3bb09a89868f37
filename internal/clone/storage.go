package clone

import (
	corev1 "k8s.io/api/core/v1"
)

// PersistentVolumeClaim returns a copy of the given claim that can be created
// in the given namespace, bound ahead of time to the given volume. The
// storage class is carried over from the source claim; binding annotations
// and status are not, so the volume controller binds the new claim afresh.
func PersistentVolumeClaim(claim *corev1.PersistentVolumeClaim, namespace, volumeName string) *corev1.PersistentVolumeClaim {
	newClaim := claim.DeepCopy()
	sanitize(newClaim, namespace)
	newClaim.SetAnnotations(nil)
	newClaim.Spec.VolumeName = volumeName
	newClaim.Status = corev1.PersistentVolumeClaimStatus{}

	return newClaim
}
