package objectcontext

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ObjectContext wraps a single cluster object together with the client,
// context and logger used to act on it.
type ObjectContext struct {
	client.Client
	Ctx     context.Context
	Log     logr.Logger
	Object  client.Object
	present bool
}

// ObjectContextList wraps a list of cluster objects the same way.
type ObjectContextList struct {
	client.Client
	Ctx     context.Context
	Log     logr.Logger
	Objects client.ObjectList
}

// New fetches the object named by req into object and returns an ObjectContext
// that knows whether the object currently exists in the cluster.
func New(ctx context.Context, kClient client.Client, req types.NamespacedName, object client.Object) (*ObjectContext, error) {
	logger := log.FromContext(ctx).WithName("NewObjectContext")

	objectContext := ObjectContext{Client: kClient, Object: object, Log: logger, Ctx: ctx, present: false}

	if err := kClient.Get(ctx, req, object); err != nil {
		if apierrors.IsNotFound(err) {
			return &objectContext, nil
		}
		logger.Error(err, "unable to identify object")
		return nil, err
	}
	objectContext.present = true
	objectContext.Object = object

	return &objectContext, nil
}

// NewList fetches the objects selected by opts into objects and returns an
// ObjectContextList holding them.
func NewList(ctx context.Context, kClient client.Client, objects client.ObjectList, opts ...client.ListOption) (*ObjectContextList, error) {
	logger := log.FromContext(ctx).WithName("NewObjectContextList")

	objectContextList := ObjectContextList{Client: kClient, Log: logger, Ctx: ctx, Objects: objects}

	if err := kClient.List(ctx, objects, opts...); err != nil {
		logger.Error(err, "unable to retrieve list")
		return nil, err
	}
	objectContextList.Objects = objects

	return &objectContextList, nil
}

// Name returns the object name.
func (r *ObjectContext) Name() string {
	return r.Object.GetName()
}

// Namespace returns the object namespace.
func (r *ObjectContext) Namespace() string {
	return r.Object.GetNamespace()
}

// Kind returns the object kind name.
func (r *ObjectContext) Kind() string {
	return r.Object.GetObjectKind().GroupVersionKind().Kind
}

// IsPresent reports whether the object exists in the cluster.
func (r *ObjectContext) IsPresent() bool {
	return r.present
}

// EnsureCreate creates the object in the cluster if it is not already there.
// It reports whether this call created the object; an object that was already
// present, or whose create hit an already exists response, reports false.
func (r *ObjectContext) EnsureCreate() (bool, error) {
	logger := r.Log.WithName("objectContext.EnsureCreate")

	if r.present {
		logger.Info(fmt.Sprintf("%s %q already exists", r.Kind(), r.Name()))
		return false, nil
	}

	if err := r.Create(r.Ctx, r.Object); err != nil {
		if apierrors.IsAlreadyExists(err) {
			logger.Info(fmt.Sprintf("%s %q already exists", r.Kind(), r.Name()))
			r.present = true
			return false, nil
		}
		logger.Error(err, fmt.Sprintf("unable to create %s %q", r.Kind(), r.Name()))
		return false, err
	}
	r.present = true
	logger.Info(fmt.Sprintf("%s %q created", r.Kind(), r.Name()))

	return true, nil
}

// EnsureDelete deletes the object from the cluster, tolerating an object that
// is already gone.
func (r *ObjectContext) EnsureDelete() error {
	logger := r.Log.WithName("objectContext.EnsureDelete")

	if err := r.Delete(r.Ctx, r.Object); err != nil {
		if apierrors.IsNotFound(err) {
			logger.Info(fmt.Sprintf("%s %q does not exist", r.Kind(), r.Name()))
			r.present = false
			return nil
		}
		logger.Error(err, fmt.Sprintf("unable to delete %s %q", r.Kind(), r.Name()))
		return err
	}
	r.present = false
	logger.Info(fmt.Sprintf("%s %q deleted", r.Kind(), r.Name()))

	return nil
}

// UpdateObject applies update to the object and writes it back to the
// cluster, refetching the object and reapplying the closure on conflict.
func (r *ObjectContext) UpdateObject(update func(object client.Object, log logr.Logger) (client.Object, logr.Logger)) error {
	logger := r.Log.WithName("objectContext.UpdateObject")

	if !r.present {
		logger.Info(fmt.Sprintf("%s %q does not exist in cluster", r.Kind(), r.Name()))
		return nil
	}

	if err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		r.Object, logger = update(r.Object, logger)
		if err := r.Update(r.Ctx, r.Object); err != nil {
			if apierrors.IsConflict(err) {
				if getErr := r.refresh(); getErr != nil {
					return getErr
				}
			}
			return err
		}
		return nil
	}); err != nil {
		if apierrors.IsNotFound(err) {
			logger.Info(fmt.Sprintf("can't update %s %q, it does not exist", r.Kind(), r.Name()))
			r.present = false
			return nil
		}
		logger.Error(err, fmt.Sprintf("unable to update %s %q", r.Kind(), r.Name()))
		return err
	}

	logger.Info(fmt.Sprintf("%s %q updated", r.Kind(), r.Name()))
	return nil
}

// refresh refetches the object from the cluster.
func (r *ObjectContext) refresh() error {
	request := types.NamespacedName{Name: r.Name()}
	if r.Object.GetNamespace() != "" {
		request.Namespace = r.Object.GetNamespace()
	}

	return r.Get(r.Ctx, request, r.Object)
}
