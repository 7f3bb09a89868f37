package setup

import (
	. "github.com/dana-team/nsm/internal/namespacemigration"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	_ "k8s.io/client-go/plugin/pkg/client/auth/gcp"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

type Options struct {
	NoWebhooks            bool
	VolumePollAttempts    int
	ScaleDownPollAttempts int
}

// Webhooks registers the different webhooks.
func Webhooks(mgr manager.Manager, scheme *runtime.Scheme) {
	hookServer := mgr.GetWebhookServer()

	decoder := admission.NewDecoder(scheme)

	hookServer.Register("/mutate-v1-namespacemigration", &webhook.Admission{Handler: &NamespaceMigrationMutator{
		Client:  mgr.GetClient(),
		Decoder: decoder,
	}})

	hookServer.Register("/validate-v1-namespacemigration", &webhook.Admission{Handler: &NamespaceMigrationValidator{
		Client:  mgr.GetClient(),
		Decoder: decoder,
	}})
}
