package namespacemigration

import (
	"fmt"
	"net/http"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/common"
	"github.com/dana-team/nsm/internal/objectcontext"
	"golang.org/x/exp/slices"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

func (v *NamespaceMigrationValidator) handleCreate(nsmObject *objectcontext.ObjectContext, reqUser string) admission.Response {
	ctx := nsmObject.Ctx
	logger := log.FromContext(ctx)

	sourceNSName := nsmObject.Object.(*danav1.NamespaceMigration).Spec.SourceNamespace
	targetNSName := nsmObject.Object.(*danav1.NamespaceMigration).Spec.TargetNamespace

	if response := common.ValidateNamespacesDiffer(sourceNSName, targetNSName); !response.Allowed {
		return response
	}

	sourceNS, err := objectcontext.New(ctx, v.Client, client.ObjectKey{Name: sourceNSName}, &corev1.Namespace{})
	if err != nil {
		logger.Error(err, "failed to create object", "sourceNS", sourceNSName)
		return admission.Errored(http.StatusBadRequest, err)
	}

	// the target namespace is not required to exist, the migration creates it
	if response := common.ValidateNamespaceExist(sourceNS); !response.Allowed {
		return response
	}

	if response := v.validateNoOverlappingMigration(nsmObject); !response.Allowed {
		return response
	}

	if response := common.ValidatePermissions(ctx, sourceNSName, targetNSName, reqUser); !response.Allowed {
		return response
	}

	return admission.Allowed("")
}

// validateNoOverlappingMigration validates that no migration which has not yet
// completed touches either namespace of the new migration. Migrations run one
// pair of namespaces at a time, so an overlapping pair has to wait its turn.
func (v *NamespaceMigrationValidator) validateNoOverlappingMigration(nsmObject *objectcontext.ObjectContext) admission.Response {
	ctx := nsmObject.Ctx
	logger := log.FromContext(ctx)

	namespaces := []string{
		nsmObject.Object.(*danav1.NamespaceMigration).Spec.SourceNamespace,
		nsmObject.Object.(*danav1.NamespaceMigration).Spec.TargetNamespace,
	}

	nsmList, err := objectcontext.NewList(ctx, v.Client, &danav1.NamespaceMigrationList{})
	if err != nil {
		logger.Error(err, "failed to list NamespaceMigration objects")
		return admission.Errored(http.StatusBadRequest, err)
	}

	for _, migration := range nsmList.Objects.(*danav1.NamespaceMigrationList).Items {
		if !common.ShouldReconcile(migration.Status.Phase) {
			continue
		}
		if slices.Contains(namespaces, migration.Spec.SourceNamespace) || slices.Contains(namespaces, migration.Spec.TargetNamespace) {
			message := fmt.Sprintf("it is forbidden to create a migration that overlaps with migration %q which has not completed yet", migration.Name)
			return admission.Denied(message)
		}
	}

	return admission.Allowed("")
}
