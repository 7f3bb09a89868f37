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

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NamespaceMigrationSpec defines the desired state of NamespaceMigration
type NamespaceMigrationSpec struct {
	// SourceNamespace is the name of the namespace from which workloads,
	// configuration and storage need to be migrated
	SourceNamespace string `json:"sourceNamespace"`

	// TargetNamespace is the name of the namespace to which workloads,
	// configuration and storage need to be migrated
	TargetNamespace string `json:"targetNamespace"`
}

// MigrationItem reports the terminal outcome of migrating a single object
type MigrationItem struct {
	// Kind is the kind of the migrated object
	Kind string `json:"kind"`

	// Name is the name of the migrated object
	Name string `json:"name"`

	// Outcome classifies how migrating the object ended.
	// It is a string and can be one of the following:
	// "Migrated" - the object was created in the target namespace
	// "AlreadyExists" - the object already existed in the target namespace
	// "Skipped" - a precondition was not met and the object was left untouched
	// "Failed" - migrating the object failed
	Outcome Outcome `json:"outcome"`

	// Reason is a string explaining why migrating the object failed or was
	// skipped if it was; otherwise it's empty
	Reason string `json:"reason,omitempty"`
}

// NamespaceMigrationStatus defines the observed state of NamespaceMigration
type NamespaceMigrationStatus struct {
	// Phase acts like a state machine for the NamespaceMigration.
	// It is a string and can be one of the following:
	// "InProgress" - state for a NamespaceMigration that is currently being executed
	// "Error" - state for a NamespaceMigration indicating that the migration could not be completed due to an error
	// "Complete" - state for a NamespaceMigration indicating that the migration completed successfully
	Phase Phase `json:"phase,omitempty"`

	// Reason is a string explaining why an error occurred if it did; otherwise it's empty
	Reason string `json:"reason,omitempty"`

	// Items lists the per-object outcomes of the last migration run
	Items []MigrationItem `json:"items,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Cluster,shortName=nsm

// NamespaceMigration is the Schema for the namespacemigrations API
type NamespaceMigration struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   NamespaceMigrationSpec   `json:"spec,omitempty"`
	Status NamespaceMigrationStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// NamespaceMigrationList contains a list of NamespaceMigration
type NamespaceMigrationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []NamespaceMigration `json:"items"`
}

func init() {
	SchemeBuilder.Register(&NamespaceMigration{}, &NamespaceMigrationList{})
}
