package namespacemigration

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/objectcontext"
	admissionv1 "k8s.io/api/admission/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

type NamespaceMigrationValidator struct {
	Client  client.Client
	Decoder admission.Decoder
}

// +kubebuilder:webhook:path=/validate-v1-namespacemigration,mutating=false,sideEffects=NoneOnDryRun,failurePolicy=fail,groups="dana.nsm.io",resources=namespacemigrations,verbs=create;update,versions=v1,name=namespacemigration.dana.io,admissionReviewVersions=v1;v1beta1

// Handle implements the validation webhook.
func (v *NamespaceMigrationValidator) Handle(ctx context.Context, req admission.Request) admission.Response {
	logger := log.FromContext(ctx).WithValues("webhook", "NamespaceMigration Webhook", "Name", req.Name)
	logger.Info("webhook request received")

	nsmObject, err := objectcontext.New(ctx, v.Client, types.NamespacedName{}, &danav1.NamespaceMigration{})
	if err != nil {
		logger.Error(err, "failed to create object context")
		return admission.Errored(http.StatusBadRequest, err)
	}

	if err := v.Decoder.DecodeRaw(req.Object, nsmObject.Object); err != nil {
		logger.Error(err, "failed to decode object", "request object", req.Object)
		return admission.Errored(http.StatusBadRequest, err)
	}

	if req.Operation == admissionv1.Create {
		reqUser := req.UserInfo.Username
		if response := v.handleCreate(nsmObject, reqUser); !response.Allowed {
			return response
		}
	}

	// deny update of a NamespaceMigration object after it's already been created
	// (i.e. the Phase in the Status is not empty)
	if req.Operation == admissionv1.Update {
		oldNSM := &danav1.NamespaceMigration{}
		if err := v.Decoder.DecodeRaw(req.OldObject, oldNSM); err != nil {
			logger.Error(err, "could not decode object")
			return admission.Errored(http.StatusBadRequest, err)
		}
		if !reflect.DeepEqual(nsmObject.Object.(*danav1.NamespaceMigration).Spec, oldNSM.Spec) {
			message := fmt.Sprintf("it is forbidden to update an object of type %q", oldNSM.TypeMeta.Kind)
			return admission.Denied(message)
		}
	}

	return admission.Allowed("all validations passed")
}
