package namespacemigration

import (
	"context"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/clone"
	"github.com/dana-team/nsm/internal/objectcontext"
	"github.com/dana-team/nsm/internal/stage"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// rebindVolumes moves every bound claim of the source namespace to the target
// namespace by releasing its volume and recreating the claim pinned to that
// volume. The data on the volumes is never copied. A claim whose volume is
// stuck only fails its own item, the remaining claims are still attempted.
func (e *Engine) rebindVolumes(ctx context.Context, run *MigrationRun) error {
	request := run.Request

	claimList, err := objectcontext.NewList(ctx, e.Client, &corev1.PersistentVolumeClaimList{}, client.InNamespace(request.SourceNamespace))
	if err != nil {
		return fmt.Errorf("failed to list persistentvolumeclaims in namespace %q: "+err.Error(), request.SourceNamespace)
	}
	claims := claimList.Objects.(*corev1.PersistentVolumeClaimList)

	tasks := []stage.Task{}
	for i := range claims.Items {
		claim := claims.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.PersistentVolumeClaim, Name: claim.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				return e.migrateClaim(ctx, &claim, request.TargetNamespace)
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	return nil
}

// migrateClaim releases the volume behind the given claim and recreates the
// claim in the target namespace, pinned to the released volume so the cluster
// cannot bind it to a different one. A claim is only recreated after its
// volume reported back as available; a volume that never does leaves the
// claim unmigrated.
func (e *Engine) migrateClaim(ctx context.Context, claim *corev1.PersistentVolumeClaim, targetNS string) (danav1.Outcome, error) {
	volumeName, err := e.Rebind.Rebind(ctx, claim)
	if err != nil {
		return "", err
	}

	return e.createInTarget(ctx, clone.PersistentVolumeClaim(claim, targetNS, volumeName))
}
