package namespacemigration

import (
	"context"
	"fmt"
	"time"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/clone"
	"github.com/dana-team/nsm/internal/objectcontext"
	"github.com/dana-team/nsm/internal/stage"
	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// targetReplicas is the replica count every migrated StatefulSet resumes
// with, regardless of the replica count it had in the source namespace.
const targetReplicas = int32(1)

// scaleDownSource scales every StatefulSet in the source namespace down to
// zero replicas and waits for their pods to terminate, so that the volumes
// the pods mount can be released before the rebind stage touches them.
func (e *Engine) scaleDownSource(ctx context.Context, run *MigrationRun) error {
	sourceNS := run.Request.SourceNamespace

	statefulSetList, err := objectcontext.NewList(ctx, e.Client, &appsv1.StatefulSetList{}, client.InNamespace(sourceNS))
	if err != nil {
		return fmt.Errorf("failed to list statefulsets in namespace %q: "+err.Error(), sourceNS)
	}
	statefulSets := statefulSetList.Objects.(*appsv1.StatefulSetList)

	if len(statefulSets.Items) == 0 {
		return nil
	}

	tasks := []stage.Task{}
	for i := range statefulSets.Items {
		statefulSet := statefulSets.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.StatefulSet, Name: statefulSet.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				if err := e.scaleToZero(ctx, statefulSet.Name, statefulSet.Namespace); err != nil {
					return "", err
				}
				return danav1.Migrated, nil
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	e.waitForPodsToTerminate(ctx, sourceNS)
	return nil
}

// scaleToZero patches the desired replicas of the named StatefulSet to zero.
func (e *Engine) scaleToZero(ctx context.Context, name, namespace string) error {
	stsObject, err := objectcontext.New(ctx, e.Client, types.NamespacedName{Name: name, Namespace: namespace}, &appsv1.StatefulSet{})
	if err != nil {
		return fmt.Errorf("failed to get statefulset %q: "+err.Error(), name)
	}

	if err := stsObject.UpdateObject(func(object client.Object, l logr.Logger) (client.Object, logr.Logger) {
		object.(*appsv1.StatefulSet).Spec.Replicas = ptr.To(int32(0))
		return object, l
	}); err != nil {
		return fmt.Errorf("failed to scale down statefulset %q: "+err.Error(), name)
	}

	return nil
}

// waitForPodsToTerminate polls the source namespace until no pod owned by a
// StatefulSet is left. When the poll window is exhausted the migration keeps
// going; the volume rebind stage has its own availability gate.
func (e *Engine) waitForPodsToTerminate(ctx context.Context, namespace string) {
	logger := log.FromContext(ctx)

	ok := false
	retries := 0

	// to avoid an infinite loop in case the pods never terminate, the loop
	// runs at most a ScaleDownRetries number of times
	for (!ok) && (retries < e.ScaleDownRetries) {
		pods := corev1.PodList{}
		if err := e.List(ctx, &pods, client.InNamespace(namespace)); err == nil {
			ok = statefulSetPodCount(&pods) == 0
		}
		if !ok {
			// wait between iterations because we don't want to overload the API with many requests
			time.Sleep(time.Duration(e.ScaleDownSleepTimeout) * time.Millisecond)
		}
		retries++
	}

	if !ok {
		logger.Info("pods of scaled down statefulsets did not terminate in time, continuing", "namespace", namespace)
	}
}

// statefulSetPodCount counts the pods owned by a StatefulSet.
func statefulSetPodCount(pods *corev1.PodList) int {
	count := 0
	for _, pod := range pods.Items {
		for _, owner := range pod.OwnerReferences {
			if owner.Kind == danav1.StatefulSet {
				count++
				break
			}
		}
	}

	return count
}

// copyDeployments recreates every Deployment of the source namespace in the
// target namespace and deletes the source copy of each one that made it over.
func (e *Engine) copyDeployments(ctx context.Context, run *MigrationRun) error {
	request := run.Request

	deploymentList, err := objectcontext.NewList(ctx, e.Client, &appsv1.DeploymentList{}, client.InNamespace(request.SourceNamespace))
	if err != nil {
		return fmt.Errorf("failed to list deployments in namespace %q: "+err.Error(), request.SourceNamespace)
	}
	deployments := deploymentList.Objects.(*appsv1.DeploymentList)

	tasks := []stage.Task{}
	for i := range deployments.Items {
		deployment := deployments.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.Deployment, Name: deployment.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				outcome, err := e.createInTarget(ctx, clone.Deployment(&deployment, request.TargetNamespace))
				if err != nil {
					return "", err
				}
				e.deleteSourceObject(ctx, &deployment, danav1.Deployment)
				return outcome, nil
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	return nil
}

// copyStatefulSets recreates every StatefulSet of the source namespace in the
// target namespace at the resume replica count and deletes the source copy of
// each one that made it over.
func (e *Engine) copyStatefulSets(ctx context.Context, run *MigrationRun) error {
	request := run.Request

	statefulSetList, err := objectcontext.NewList(ctx, e.Client, &appsv1.StatefulSetList{}, client.InNamespace(request.SourceNamespace))
	if err != nil {
		return fmt.Errorf("failed to list statefulsets in namespace %q: "+err.Error(), request.SourceNamespace)
	}
	statefulSets := statefulSetList.Objects.(*appsv1.StatefulSetList)

	tasks := []stage.Task{}
	for i := range statefulSets.Items {
		statefulSet := statefulSets.Items[i]
		tasks = append(tasks, stage.Task{
			Item: stage.Item{Kind: danav1.StatefulSet, Name: statefulSet.Name},
			Action: func(ctx context.Context) (danav1.Outcome, error) {
				outcome, err := e.createInTarget(ctx, clone.StatefulSet(&statefulSet, request.TargetNamespace, targetReplicas))
				if err != nil {
					return "", err
				}
				e.deleteSourceObject(ctx, &statefulSet, danav1.StatefulSet)
				return outcome, nil
			},
		})
	}
	run.record(stage.RunStage(ctx, tasks))

	return nil
}

// deleteSourceObject removes the source copy of a migrated workload. Failures
// are logged and not escalated, which leaves the workload present in both
// namespaces until a repeated run cleans it up.
func (e *Engine) deleteSourceObject(ctx context.Context, object client.Object, kind string) {
	logger := log.FromContext(ctx)

	sourceObject, err := objectcontext.New(ctx, e.Client, types.NamespacedName{Name: object.GetName(), Namespace: object.GetNamespace()}, object)
	if err != nil {
		logger.Error(err, fmt.Sprintf("unable to get source %s %q, it is now present in both namespaces", kind, object.GetName()))
		return
	}

	if err := sourceObject.EnsureDelete(); err != nil {
		logger.Error(err, fmt.Sprintf("unable to delete source %s %q, it is now present in both namespaces", kind, object.GetName()))
	}
}
