package stage

import (
	"context"
	"errors"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/rebind"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var _ = Describe("RunStage", func() {
	ctx := context.Background()

	succeed := func(outcome danav1.Outcome) func(ctx context.Context) (danav1.Outcome, error) {
		return func(ctx context.Context) (danav1.Outcome, error) {
			return outcome, nil
		}
	}

	fail := func(err error) func(ctx context.Context) (danav1.Outcome, error) {
		return func(ctx context.Context) (danav1.Outcome, error) {
			return "", err
		}
	}

	It("should record the outcome every action reports", func() {
		results := RunStage(ctx, []Task{
			{Item: Item{Kind: danav1.ConfigMap, Name: "cfg"}, Action: succeed(danav1.Migrated)},
			{Item: Item{Kind: danav1.ConfigMap, Name: "old"}, Action: succeed(danav1.AlreadyExists)},
		})

		Expect(results).To(HaveLen(2))
		Expect(results[0].Outcome).To(Equal(danav1.Migrated))
		Expect(results[0].Reason).To(BeEmpty())
		Expect(results[1].Outcome).To(Equal(danav1.AlreadyExists))
	})

	It("should keep attempting the remaining items when one fails", func() {
		attempted := []string{}
		action := func(name string, err error) func(ctx context.Context) (danav1.Outcome, error) {
			return func(ctx context.Context) (danav1.Outcome, error) {
				attempted = append(attempted, name)
				if err != nil {
					return "", err
				}
				return danav1.Migrated, nil
			}
		}

		results := RunStage(ctx, []Task{
			{Item: Item{Kind: danav1.ConfigMap, Name: "first"}, Action: action("first", errors.New("boom"))},
			{Item: Item{Kind: danav1.ConfigMap, Name: "second"}, Action: action("second", nil)},
			{Item: Item{Kind: danav1.ConfigMap, Name: "third"}, Action: action("third", nil)},
		})

		Expect(attempted).To(Equal([]string{"first", "second", "third"}))
		Expect(results[0].Outcome).To(Equal(danav1.Failed))
		Expect(results[0].Reason).To(Equal("boom"))
		Expect(results[1].Outcome).To(Equal(danav1.Migrated))
		Expect(results[2].Outcome).To(Equal(danav1.Migrated))
	})

	It("should classify an already exists error as success", func() {
		alreadyExists := apierrors.NewAlreadyExists(schema.GroupResource{Resource: "configmaps"}, "cfg")

		results := RunStage(ctx, []Task{
			{Item: Item{Kind: danav1.ConfigMap, Name: "cfg"}, Action: fail(alreadyExists)},
		})

		Expect(results[0].Outcome).To(Equal(danav1.AlreadyExists))
		Expect(results[0].Reason).To(BeEmpty())
	})

	It("should classify an unbound claim as skipped", func() {
		wrapped := fmt.Errorf("claim %q: %w", "data-db", rebind.ErrClaimNotBound)

		results := RunStage(ctx, []Task{
			{Item: Item{Kind: danav1.PersistentVolumeClaim, Name: "data-db"}, Action: fail(wrapped)},
		})

		Expect(results[0].Outcome).To(Equal(danav1.Skipped))
		Expect(results[0].Reason).To(ContainSubstring("no bound volume"))
	})

	It("should return no results for an empty stage", func() {
		Expect(RunStage(ctx, nil)).To(BeEmpty())
	})
})
