/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"flag"
	"os"

	danav1 "github.com/dana-team/nsm/api/v1"
	"github.com/dana-team/nsm/internal/setup"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

var (
	metricsAddr           string
	enableLeaderElection  bool
	probeAddr             string
	noWebhooks            bool
	volumePollAttempts    int
	scaleDownPollAttempts int
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(corev1.AddToScheme(scheme))
	utilruntime.Must(danav1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

func main() {
	parseFlags()

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "f3d82917.dana.io",
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
	})

	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	nsmOpts := setup.Options{
		NoWebhooks:            noWebhooks,
		VolumePollAttempts:    volumePollAttempts,
		ScaleDownPollAttempts: scaleDownPollAttempts,
	}

	setupLog.Info("setting up reconcilers")
	if err := setup.Controllers(mgr, nsmOpts); err != nil {
		setupLog.Error(err, "unable to successfully set up controllers")
		os.Exit(1)
	}

	if !nsmOpts.NoWebhooks {
		setupLog.Info("setting up webhooks")
		setup.Webhooks(mgr, scheme)
	}
	// +kubebuilder:scaffold:builder

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func parseFlags() {
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&noWebhooks, "no-webhooks", false, "Disables webhooks")
	flag.IntVar(&volumePollAttempts, "volume-poll-attempts", danav1.VolumePollAttempts,
		"The number of times to poll a released volume until it becomes available, one second apart. Non-positive values fall back to 30.")
	flag.IntVar(&scaleDownPollAttempts, "scale-down-poll-attempts", danav1.ScaleDownPollAttempts,
		"The number of times to poll for pod termination after scale-down, half a second apart. Non-positive values fall back to 60.")

	flag.Parse()
}
