package common

import (
	"context"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/objectcontext"
	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

// ValidateNamespaceExist validates that a namespace exists.
func ValidateNamespaceExist(ns *objectcontext.ObjectContext) admission.Response {
	if !(ns.IsPresent()) {
		message := fmt.Sprintf("namespace %q does not exist", ns.Name())
		return admission.Denied(message)
	}

	return admission.Allowed("")
}

// ValidateNamespacesDiffer validates that a migration is not trying to move
// a namespace onto itself.
func ValidateNamespacesDiffer(sourceNS, targetNS string) admission.Response {
	if sourceNS == targetNS {
		message := fmt.Sprintf("it is forbidden to migrate namespace %q onto itself", sourceNS)
		return admission.Denied(message)
	}

	return admission.Allowed("")
}

// ValidatePermissions checks if the requesting user has the needed permissions on both
// the source and the target namespaces of a migration and denies otherwise.
func ValidatePermissions(ctx context.Context, sourceNS, targetNS, reqUser string) admission.Response {
	hasSourcePermissions := permissionsExist(ctx, reqUser, sourceNS)
	hasTargetPermissions := permissionsExist(ctx, reqUser, targetNS)

	if !(hasSourcePermissions && hasTargetPermissions) {
		message := fmt.Sprintf("you must have permissions on both %q and %q to perform this operation", sourceNS, targetNS)
		return admission.Denied(message)
	}

	return admission.Allowed("")
}

// permissionsExist checks if a user has permission to create a pod in a given namespace.
// It impersonates the reqUser and uses the SelfSubjectAccessReview API to check if the action
// is allowed or denied. It returns a boolean value indicating whether the user has permission.
func permissionsExist(ctx context.Context, reqUser, namespace string) bool {
	if reqUser == fmt.Sprintf("system:serviceaccount:%s:%s", danav1.NsmNamespace, danav1.NsmServiceAccount) {
		return true
	}

	config, err := rest.InClusterConfig()
	if err != nil {
		panic(err.Error())
	}

	// set the user to impersonate in the configuration
	config.Impersonate = rest.ImpersonationConfig{
		UserName: reqUser,
	}

	// create a new Kubernetes client using the configuration
	clientSet, err := kubernetes.NewForConfig(config)
	if err != nil {
		panic(err.Error())
	}

	// create a new SelfSubjectAccessReview API object for checking permissions
	action := authv1.ResourceAttributes{
		Namespace: namespace,
		Verb:      "create",
		Resource:  "pods",
	}

	selfCheck := authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &action,
		},
	}

	// check the permissions for the user
	resp, err := clientSet.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, &selfCheck, metav1.CreateOptions{})
	if err != nil {
		panic(err.Error())
	}

	// check the response status to determine whether the user has permission to create the pod or not
	if resp.Status.Denied {
		return false
	}

	return resp.Status.Allowed
}
