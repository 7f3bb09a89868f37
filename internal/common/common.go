package common

import (
	danav1 "github.com/dana-team/nsm/api/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// DeletionTimeStampExists returns true if an object is being deleted, and false otherwise.
func DeletionTimeStampExists(object client.Object) bool {
	return !object.GetDeletionTimestamp().IsZero()
}

// ShouldReconcile returns true if the Phase given as argument is
// not Complete or Error; meaning that reconciliation needs to take place.
func ShouldReconcile(phase danav1.Phase) bool {
	return phase != danav1.Complete && phase != danav1.Error
}
