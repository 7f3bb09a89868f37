package clone

import (
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/utils/ptr"
)

// Deployment returns a copy of the given Deployment that can be created in
// the given namespace.
func Deployment(deployment *appsv1.Deployment, namespace string) *appsv1.Deployment {
	newDeployment := deployment.DeepCopy()
	sanitize(newDeployment, namespace)

	return newDeployment
}

// StatefulSet returns a copy of the given StatefulSet that can be created in
// the given namespace, with its desired replicas forced to the given count
// regardless of the count observed on the source object.
func StatefulSet(statefulSet *appsv1.StatefulSet, namespace string, replicas int32) *appsv1.StatefulSet {
	newStatefulSet := statefulSet.DeepCopy()
	sanitize(newStatefulSet, namespace)
	newStatefulSet.Spec.Replicas = ptr.To(replicas)

	return newStatefulSet
}
