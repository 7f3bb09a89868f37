package clone

import (
	corev1 "k8s.io/api/core/v1"
)

// ConfigMap returns a copy of the given ConfigMap that can be created in the
// given namespace.
func ConfigMap(configMap *corev1.ConfigMap, namespace string) *corev1.ConfigMap {
	newConfigMap := configMap.DeepCopy()
	sanitize(newConfigMap, namespace)

	return newConfigMap
}

// Secret returns a copy of the given Secret that can be created in the given
// namespace.
func Secret(secret *corev1.Secret, namespace string) *corev1.Secret {
	newSecret := secret.DeepCopy()
	sanitize(newSecret, namespace)

	return newSecret
}
