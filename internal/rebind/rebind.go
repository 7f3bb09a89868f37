package rebind

import (
	"context"
	"errors"
	"fmt"
	"time"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/objectcontext"
	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ErrClaimNotBound reports a claim that was never bound to a volume, so there
// is nothing to rebind.
var ErrClaimNotBound = errors.New("claim has no bound volume")

// Coordinator releases the volume behind a bound claim so that the volume can
// be claimed again under a new name in another namespace, without touching
// the volume's data.
type Coordinator struct {
	client.Client
	MaxRetries   int
	SleepTimeout int
}

// NewCoordinator returns a Coordinator using the given client. Non-positive
// poll settings fall back to the defaults.
func NewCoordinator(kClient client.Client, maxRetries, sleepTimeout int) *Coordinator {
	if maxRetries <= 0 {
		maxRetries = danav1.MaxVolumeRetries
	}
	if sleepTimeout <= 0 {
		sleepTimeout = danav1.VolumeSleepTimeout
	}

	return &Coordinator{Client: kClient, MaxRetries: maxRetries, SleepTimeout: sleepTimeout}
}

// Rebind detaches the given claim from its bound volume and waits for the
// volume to become available for a new claim. It returns the name of the
// released volume so that the caller can pin it on the recreated claim.
// Deleting the claim and releasing the volume tolerate objects that are
// already gone, which makes a partially executed rebind safe to repeat.
func (c *Coordinator) Rebind(ctx context.Context, claim *corev1.PersistentVolumeClaim) (string, error) {
	logger := log.FromContext(ctx).WithName("rebind")

	volumeName := claim.Spec.VolumeName
	if volumeName == "" {
		return "", ErrClaimNotBound
	}
	logger.Info("starting to rebind volume", "volume", volumeName, "claim", claim.Name)

	if err := c.deleteClaim(ctx, claim); err != nil {
		logger.Error(err, fmt.Sprintf("unable to delete claim %q, continuing", claim.Name))
	}

	if err := c.releaseVolume(ctx, volumeName); err != nil {
		logger.Error(err, fmt.Sprintf("unable to release volume %q, continuing", volumeName))
	}

	if err := c.waitForVolumeAvailable(ctx, volumeName); err != nil {
		return "", err
	}

	logger.Info("successfully rebound volume", "volume", volumeName)
	return volumeName, nil
}

// deleteClaim deletes the claim in the source namespace so that its volume
// can be released.
func (c *Coordinator) deleteClaim(ctx context.Context, claim *corev1.PersistentVolumeClaim) error {
	claimObject, err := objectcontext.New(ctx, c.Client, types.NamespacedName{Name: claim.Name, Namespace: claim.Namespace}, &corev1.PersistentVolumeClaim{})
	if err != nil {
		return fmt.Errorf("failed to get claim %q: "+err.Error(), claim.Name)
	}

	if err := claimObject.EnsureDelete(); err != nil {
		return fmt.Errorf("failed to delete claim %q: "+err.Error(), claim.Name)
	}

	return nil
}

// releaseVolume drops the claim reference from the volume so that the volume
// stops pointing at the deleted claim.
func (c *Coordinator) releaseVolume(ctx context.Context, volumeName string) error {
	volumeObject, err := objectcontext.New(ctx, c.Client, types.NamespacedName{Name: volumeName}, &corev1.PersistentVolume{})
	if err != nil {
		return fmt.Errorf("failed to get volume %q: "+err.Error(), volumeName)
	}

	if err := volumeObject.UpdateObject(func(object client.Object, l logr.Logger) (client.Object, logr.Logger) {
		object.(*corev1.PersistentVolume).Spec.ClaimRef = nil
		return object, l
	}); err != nil {
		return fmt.Errorf("failed to release volume %q: "+err.Error(), volumeName)
	}

	return nil
}

// waitForVolumeAvailable polls the volume phase until the volume reports
// Available. The phase is read live from the cluster on every attempt; it is
// the only authoritative signal that the released claim has propagated
// through the storage subsystem.
func (c *Coordinator) waitForVolumeAvailable(ctx context.Context, volumeName string) error {
	ok := false
	retries := 0

	// to avoid an infinite loop in case the release never propagates, the loop
	// runs at most a MaxRetries number of times
	for (!ok) && (retries < c.MaxRetries) {
		volume := corev1.PersistentVolume{}
		if err := c.Get(ctx, types.NamespacedName{Name: volumeName}, &volume); err == nil {
			ok = volume.Status.Phase == corev1.VolumeAvailable
		}
		if !ok {
			// wait between iterations because we don't want to overload the API with many requests
			time.Sleep(time.Duration(c.SleepTimeout) * time.Millisecond)
		}
		retries++
	}

	if !ok {
		return fmt.Errorf("volume %q did not become available", volumeName)
	}

	return nil
}
