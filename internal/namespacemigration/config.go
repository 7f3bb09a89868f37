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

// copyConfigMaps recreates every ConfigMap of the source namespace in the
// target namespace. The source copies are left in place, other occupants of
// the source namespace may still read them.
func (e *Engine) copyConfigMaps(ctx context.Context, run *MigrationRun) error {
	request := run.Request

	configMapList, err := objectcontext.NewList(ctx, e.Client, &corev1.ConfigMapList{}, client.InNamespace(request.SourceNamespace))
	if err != nil {
		return fmt.Errorf("failed to list configmaps in namespace %q: "+err.Error(), request.SourceNamespace)
	}
	configMaps := configMapList.Objects.(*corev1.ConfigMapList)

	tasks := []stage.Task{}
	for i := range configMaps.Items {
		configMap := configMaps.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.ConfigMap, Name: configMap.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				return e.createInTarget(ctx, clone.ConfigMap(&configMap, request.TargetNamespace))
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	return nil
}

// copySecrets recreates every Secret of the source namespace in the target
// namespace. As with ConfigMaps, the source copies are left in place.
func (e *Engine) copySecrets(ctx context.Context, run *MigrationRun) error {
	request := run.Request

	secretList, err := objectcontext.NewList(ctx, e.Client, &corev1.SecretList{}, client.InNamespace(request.SourceNamespace))
	if err != nil {
		return fmt.Errorf("failed to list secrets in namespace %q: "+err.Error(), request.SourceNamespace)
	}
	secrets := secretList.Objects.(*corev1.SecretList)

	tasks := []stage.Task{}
	for i := range secrets.Items {
		secret := secrets.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.Secret, Name: secret.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				return e.createInTarget(ctx, clone.Secret(&secret, request.TargetNamespace))
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	return nil
}
