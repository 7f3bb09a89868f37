package clone

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// sanitize strips the cluster-assigned identity from a copied object and
// rehomes it in the given namespace, leaving an object that can be created.
func sanitize(object metav1.Object, namespace string) {
	object.SetNamespace(namespace)
	object.SetResourceVersion("")
	object.SetUID("")
}
