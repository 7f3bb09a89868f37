package v1

import (
	"os"
	"strconv"
)

type Phase string

type Outcome string

const MetaGroup = "dana.nsm.io/"

var VolumePollAttempts, _ = strconv.Atoi(os.Getenv("VOLUME_POLL_ATTEMPTS"))

var ScaleDownPollAttempts, _ = strconv.Atoi(os.Getenv("SCALE_DOWN_POLL_ATTEMPTS"))

const (
	None       Phase = ""
	InProgress Phase = "InProgress"
	Complete   Phase = "Complete"
	Error      Phase = "Error"
)

const (
	Migrated      Outcome = "Migrated"
	AlreadyExists Outcome = "AlreadyExists"
	Skipped       Outcome = "Skipped"
	Failed        Outcome = "Failed"
)

const (
	Requester     = MetaGroup + "requester"
	MigratedLabel = MetaGroup + "migrated"
)

const (
	NsmNamespace      = "nsm-system"
	NsmServiceAccount = "nsm-controller-manager"
)

const (
	Deployment            = "Deployment"
	StatefulSet           = "StatefulSet"
	ConfigMap             = "ConfigMap"
	Secret                = "Secret"
	PersistentVolumeClaim = "PersistentVolumeClaim"
	Namespace             = "Namespace"
)

const (
	MaxVolumeRetries      = 30
	VolumeSleepTimeout    = 1000
	MaxScaleDownRetries   = 60
	ScaleDownSleepTimeout = 500
)
