package setup

import (
	"fmt"

	"github.com/dana-team/nsm/internal/metrics"
	. "github.com/dana-team/nsm/internal/namespacemigration"
	"github.com/dana-team/nsm/internal/rebind"
	_ "k8s.io/client-go/plugin/pkg/client/auth/gcp"
	"sigs.k8s.io/controller-runtime/pkg/manager"
)

// Controllers sets up the different controllers with the manager.
func Controllers(mgr manager.Manager, opts Options) error {
	metrics.InitializeNSMMetrics()

	coordinator := rebind.NewCoordinator(mgr.GetClient(), opts.VolumePollAttempts, 0)
	engine := NewEngine(mgr.GetClient(), coordinator, opts.ScaleDownPollAttempts, 0)

	if err := (&NamespaceMigrationReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
		Engine: engine,
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller %q: "+err.Error(), "NamespaceMigration")
	}

	return nil
}
