package namespacemigration

import (
	"context"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/objectcontext"
	"github.com/dana-team/nsm/internal/rebind"
	"github.com/dana-team/nsm/internal/stage"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	stageEnsureNamespace = "ensure-target-namespace"
	stageScaleDown       = "scale-down"
	stageRebindVolumes   = "rebind-volumes"
	stageConfigMaps      = "configmaps"
	stageSecrets         = "secrets"
	stageDeployments     = "deployments"
	stageStatefulSets    = "statefulsets"
)

// MigrationRequest identifies one migration of a source namespace into a
// target namespace. It is immutable once handed to the engine.
type MigrationRequest struct {
	SourceNamespace string
	TargetNamespace string
	RequestID       string
}

// MigrationRun is the engine's execution record for one MigrationRequest. It
// aggregates the per-item outcomes of every stage; when more than one stage
// acts on the same item, the last recorded outcome wins.
type MigrationRun struct {
	Request      MigrationRequest
	CurrentStage string
	outcomes     map[stage.Item]stage.Result
	order        []stage.Item
}

func newMigrationRun(request MigrationRequest) *MigrationRun {
	return &MigrationRun{Request: request, outcomes: map[stage.Item]stage.Result{}}
}

// record merges stage results into the run, keeping the first-seen order of
// items for reporting.
func (r *MigrationRun) record(results []stage.Result) {
	for _, result := range results {
		if _, found := r.outcomes[result.Item]; !found {
			r.order = append(r.order, result.Item)
		}
		r.outcomes[result.Item] = result
	}
}

// Items returns the per-item outcomes of the run in the order the items were
// first acted on.
func (r *MigrationRun) Items() []danav1.MigrationItem {
	items := make([]danav1.MigrationItem, 0, len(r.order))
	for _, item := range r.order {
		result := r.outcomes[item]
		items = append(items, danav1.MigrationItem{
			Kind:    item.Kind,
			Name:    item.Name,
			Outcome: result.Outcome,
			Reason:  result.Reason,
		})
	}

	return items
}

// Engine migrates the workloads, configuration and storage of one namespace
// into another, stage by stage. The engine owns the rebind Coordinator it
// uses for volume handling and runs every stage through the stage executor,
// so a single item's failure never aborts a whole run.
type Engine struct {
	client.Client
	Rebind                *rebind.Coordinator
	ScaleDownRetries      int
	ScaleDownSleepTimeout int
}

// NewEngine returns an Engine using the given client and rebind Coordinator.
// Non-positive poll settings fall back to the defaults.
func NewEngine(kClient client.Client, coordinator *rebind.Coordinator, scaleDownRetries, scaleDownSleepTimeout int) *Engine {
	if scaleDownRetries <= 0 {
		scaleDownRetries = danav1.MaxScaleDownRetries
	}
	if scaleDownSleepTimeout <= 0 {
		scaleDownSleepTimeout = danav1.ScaleDownSleepTimeout
	}

	return &Engine{
		Client:                kClient,
		Rebind:                coordinator,
		ScaleDownRetries:      scaleDownRetries,
		ScaleDownSleepTimeout: scaleDownSleepTimeout,
	}
}

// MigrateNamespace runs the full migration of sourceNS into targetNS and
// returns the aggregated run. The stages run in a fixed order: ensure the
// target namespace, scale down the source, rebind volumes, copy ConfigMaps,
// copy Secrets, copy Deployments and copy StatefulSets. Per-item failures
// are recorded in the run and do not stop later stages; only conditions that
// make the whole run meaningless are returned as errors.
func (e *Engine) MigrateNamespace(ctx context.Context, sourceNS, targetNS string) (*MigrationRun, error) {
	logger := log.FromContext(ctx).WithName("engine")

	request := MigrationRequest{
		SourceNamespace: sourceNS,
		TargetNamespace: targetNS,
		RequestID:       fmt.Sprintf("%s->%s", sourceNS, targetNS),
	}
	run := newMigrationRun(request)

	if sourceNS == "" || targetNS == "" || sourceNS == targetNS {
		return run, fmt.Errorf("cannot migrate namespace %q to namespace %q", sourceNS, targetNS)
	}

	logger.Info("starting to migrate namespace", "request", request.RequestID)

	run.CurrentStage = stageEnsureNamespace
	if err := e.ensureTargetNamespace(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageScaleDown
	if err := e.scaleDownSource(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageRebindVolumes
	if err := e.rebindVolumes(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageConfigMaps
	if err := e.copyConfigMaps(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageSecrets
	if err := e.copySecrets(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageDeployments
	if err := e.copyDeployments(ctx, run); err != nil {
		return run, err
	}

	run.CurrentStage = stageStatefulSets
	if err := e.copyStatefulSets(ctx, run); err != nil {
		return run, err
	}

	logger.Info("successfully migrated namespace", "request", request.RequestID)
	return run, nil
}

// ensureTargetNamespace makes sure the target namespace exists, creating it
// if needed. A target namespace that already exists counts as success.
func (e *Engine) ensureTargetNamespace(ctx context.Context, run *MigrationRun) error {
	targetNS := run.Request.TargetNamespace

	nsObject, err := objectcontext.New(ctx, e.Client, client.ObjectKey{Name: targetNS}, composeNamespace(targetNS))
	if err != nil {
		return fmt.Errorf("failed to get namespace %q: "+err.Error(), targetNS)
	}

	created, err := nsObject.EnsureCreate()
	if err != nil {
		return fmt.Errorf("failed to create namespace %q: "+err.Error(), targetNS)
	}

	outcome := danav1.AlreadyExists
	if created {
		outcome = danav1.Migrated
	}
	run.record([]stage.Result{{Item: stage.Item{Kind: danav1.Namespace, Name: targetNS}, Outcome: outcome}})

	return nil
}

// createInTarget creates the given cloned object in its namespace, reporting
// whether it was freshly created or already there.
func (e *Engine) createInTarget(ctx context.Context, object client.Object) (danav1.Outcome, error) {
	objContext, err := objectcontext.New(ctx, e.Client, client.ObjectKey{Name: object.GetName(), Namespace: object.GetNamespace()}, object)
	if err != nil {
		return "", fmt.Errorf("failed to get object %q: "+err.Error(), object.GetName())
	}

	created, err := objContext.EnsureCreate()
	if err != nil {
		return "", fmt.Errorf("failed to create object %q: "+err.Error(), object.GetName())
	}
	if !created {
		return danav1.AlreadyExists, nil
	}

	return danav1.Migrated, nil
}

// composeNamespace returns a namespace object labeled as managed by a
// migration.
func composeNamespace(name string) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{danav1.MigratedLabel: "true"},
		},
	}
}
