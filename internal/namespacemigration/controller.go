package namespacemigration

import (
	"context"
	"fmt"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/common"
	"github.com/dana-team/nsm/internal/metrics"
	"github.com/dana-team/nsm/internal/objectcontext"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// NamespaceMigrationReconciler reconciles a NamespaceMigration object
type NamespaceMigrationReconciler struct {
	client.Client
	Scheme *runtime.Scheme
	Engine *Engine
}

// +kubebuilder:rbac:groups=dana.nsm.io,resources=namespacemigrations,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=dana.nsm.io,resources=namespacemigrations/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=namespaces,verbs=get;list;watch;create;update;patch
// +kubebuilder:rbac:groups="",resources=configmaps;secrets;persistentvolumeclaims,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=persistentvolumes,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups=apps,resources=deployments;statefulsets,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=users,verbs=impersonate

func (r *NamespaceMigrationReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&danav1.NamespaceMigration{}).
		Complete(r)
}

func (r *NamespaceMigrationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithName("controllers").WithName("NamespaceMigration").WithValues("nsm", req.NamespacedName)
	logger.Info("starting to reconcile")

	nsmObject, err := objectcontext.New(ctx, r.Client, client.ObjectKey{Name: req.NamespacedName.Name}, &danav1.NamespaceMigration{})
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to get object %q: "+err.Error(), req.Name)
	}

	if !nsmObject.IsPresent() {
		logger.Info("resource not found. Ignoring since object must be deleted")
		return ctrl.Result{}, nil
	}

	if common.DeletionTimeStampExists(nsmObject.Object) {
		logger.Info("resource is being deleted, skipping")
		return ctrl.Result{}, nil
	}

	phase := nsmObject.Object.(*danav1.NamespaceMigration).Status.Phase
	if common.ShouldReconcile(phase) {
		return r.reconcile(nsmObject)
	} else {
		logger.Info("no need to reconcile, object phase is: ", "phase", phase)
	}

	return ctrl.Result{}, nil
}

func (r *NamespaceMigrationReconciler) reconcile(nsmObject *objectcontext.ObjectContext) (ctrl.Result, error) {
	ctx := nsmObject.Ctx
	logger := log.FromContext(ctx)

	sourceNS := nsmObject.Object.(*danav1.NamespaceMigration).Spec.SourceNamespace
	targetNS := nsmObject.Object.(*danav1.NamespaceMigration).Spec.TargetNamespace

	// update the phase before touching any namespace so that an interrupted
	// run is visible as in progress and not silently retried as new
	if err := r.updateNsmStatus(nsmObject, danav1.InProgress, "", nil); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed updating the status of object %q: "+err.Error(), nsmObject.Name())
	}
	logger.Info("successfully updated status of NamespaceMigration object", "phase", danav1.InProgress)
	metrics.ObserveMigrationPhase(nsmObject.Name(), sourceNS, targetNS, danav1.InProgress)

	run, er := r.Engine.MigrateNamespace(ctx, sourceNS, targetNS)
	items := run.Items()
	observeItems(nsmObject.Name(), items)

	if er != nil {
		err := r.updateNsmStatus(nsmObject, danav1.Error, er.Error(), items)
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed updating the status of object %q: "+err.Error(), nsmObject.Name())
		}
		metrics.ObserveMigrationPhase(nsmObject.Name(), sourceNS, targetNS, danav1.Error)
		return ctrl.Result{}, fmt.Errorf("failed to migrate namespace %q to namespace %q: "+er.Error(), sourceNS, targetNS)
	}

	if er := r.updateNsmStatus(nsmObject, danav1.Complete, "", items); er != nil {
		err := r.updateNsmStatus(nsmObject, danav1.Error, er.Error(), items)
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed updating the status of object %q: "+err.Error(), nsmObject.Name())
		}
		return ctrl.Result{}, fmt.Errorf("failed updating the status of object %q: "+er.Error(), nsmObject.Name())
	}
	logger.Info("successfully updated status of NamespaceMigration object", "phase", danav1.Complete)
	metrics.ObserveMigrationPhase(nsmObject.Name(), sourceNS, targetNS, danav1.Complete)

	return ctrl.Result{}, nil
}

// updateNsmStatus updates the status of the NamespaceMigration object. A nil
// items slice leaves the previously reported items untouched.
func (r *NamespaceMigrationReconciler) updateNsmStatus(nsmObject *objectcontext.ObjectContext, phase danav1.Phase, reason string, items []danav1.MigrationItem) error {
	err := nsmObject.UpdateObject(func(object client.Object, l logr.Logger) (client.Object, logr.Logger) {
		object.(*danav1.NamespaceMigration).Status.Phase = phase
		object.(*danav1.NamespaceMigration).Status.Reason = reason
		if items != nil {
			object.(*danav1.NamespaceMigration).Status.Items = items
		}
		return object, l
	})

	return err
}

// observeItems updates the item metrics of the migration per outcome.
func observeItems(name string, items []danav1.MigrationItem) {
	quantities := map[danav1.Outcome]float64{}
	for _, item := range items {
		quantities[item.Outcome]++
	}

	for outcome, quantity := range quantities {
		metrics.ObserveMigrationItems(name, outcome, quantity)
	}
}
