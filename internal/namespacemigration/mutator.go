package namespacemigration

import (
	"context"
	"encoding/json"
	"net/http"

	danav1 "github.com/dana-team/nsm/api/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

type NamespaceMigrationMutator struct {
	Client  client.Client
	Decoder admission.Decoder
}

// +kubebuilder:webhook:path=/mutate-v1-namespacemigration,mutating=true,sideEffects=NoneOnDryRun,failurePolicy=fail,groups="dana.nsm.io",resources=namespacemigrations,verbs=create,versions=v1,name=namespacemigration.dana.io,admissionReviewVersions=v1;v1beta1

// Handle implements the mutation webhook.
func (m *NamespaceMigrationMutator) Handle(ctx context.Context, req admission.Request) admission.Response {
	logger := log.FromContext(ctx).WithValues("webhook", "NamespaceMigration mutation Webhook")
	logger.Info("webhook request received")

	namespaceMigration := danav1.NamespaceMigration{}
	if err := m.Decoder.DecodeRaw(req.Object, &namespaceMigration); err != nil {
		logger.Error(err, "failed to decode object", "request object", req.Object)
		return admission.Errored(http.StatusBadRequest, err)
	}
	marshalNamespaceMigration, err := m.UpdateRequester(namespaceMigration, req.UserInfo.Username)
	if err != nil {
		logger.Error(err, "failed to marshal object", "object", namespaceMigration)
		return admission.Errored(http.StatusInternalServerError, err)
	}

	return admission.PatchResponseFromRaw(req.Object.Raw, marshalNamespaceMigration)
}

// UpdateRequester adds a requester annotation to the object.
func (m *NamespaceMigrationMutator) UpdateRequester(namespaceMigrationObject danav1.NamespaceMigration, requester string) ([]byte, error) {
	if namespaceMigrationObject.Annotations == nil {
		namespaceMigrationObject.Annotations = make(map[string]string)
	}
	namespaceMigrationObject.Annotations[danav1.Requester] = requester
	marshalNamespaceMigration, err := json.Marshal(namespaceMigrationObject)
	if err != nil {
		return nil, err
	}
	return marshalNamespaceMigration, nil
}
