package stage

import (
	"context"
	"errors"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/rebind"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Item identifies one object a stage acts on.
type Item struct {
	Kind string
	Name string
}

// Task couples one item with the action that migrates it. The action returns
// the outcome it reached; an error it returns is classified by the executor.
type Task struct {
	Item   Item
	Action func(ctx context.Context) (danav1.Outcome, error)
}

// Result records the terminal outcome of one item in a stage.
type Result struct {
	Item    Item
	Outcome danav1.Outcome
	Reason  string
}

// RunStage applies every task independently and records a per-item outcome.
// One task's failure is recorded and does not prevent the remaining tasks
// from being attempted, so a stage always runs to completion.
func RunStage(ctx context.Context, tasks []Task) []Result {
	logger := log.FromContext(ctx).WithName("stage")

	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		outcome, err := task.Action(ctx)
		result := Result{Item: task.Item, Outcome: outcome}
		if err != nil {
			result.Outcome, result.Reason = classify(err)
			switch result.Outcome {
			case danav1.Failed:
				logger.Error(err, fmt.Sprintf("failed to migrate %s %q", task.Item.Kind, task.Item.Name))
			case danav1.Skipped:
				logger.Info(fmt.Sprintf("skipping %s %q, %s", task.Item.Kind, task.Item.Name, result.Reason))
			default:
				logger.Info(fmt.Sprintf("%s %q already exists", task.Item.Kind, task.Item.Name))
			}
		}
		results = append(results, result)
	}

	return results
}

// classify maps an error returned by an action to the outcome recorded for
// its item. An object that already exists at the destination counts as
// success so that repeating a partially executed migration stays safe.
func classify(err error) (danav1.Outcome, string) {
	if apierrors.IsAlreadyExists(err) {
		return danav1.AlreadyExists, ""
	}
	if errors.Is(err, rebind.ErrClaimNotBound) {
		return danav1.Skipped, err.Error()
	}
	return danav1.Failed, err.Error()
}
