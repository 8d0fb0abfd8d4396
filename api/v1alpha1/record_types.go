/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultRecordClass is the class used when RecordSpec.Class is empty.
const DefaultRecordClass = "IN"

// RecordSpec defines the desired state of a Record.
//
// Exactly one of ZoneRef or a fully-qualified (trailing-dot) DomainName
// must be set.
type RecordSpec struct {
	// DomainName is either an unqualified label sequence, resolved relative
	// to ZoneRef's parent, or a fully-qualified name ending in ".".
	DomainName string `json:"domainName"`
	// ZoneRef points at the parent Zone this Record's DomainName is
	// relative to. Mutually exclusive with a fully-qualified DomainName.
	// +optional
	ZoneRef *ZoneRef `json:"zoneRef,omitempty"`
	// Type of the record (e.g. "A", "AAAA", "MX", "TXT").
	Type string `json:"type"`
	// Class of the record, defaults to "IN".
	// +kubebuilder:default:="IN"
	// +optional
	Class string `json:"class,omitempty"`
	// TTL of the record, in seconds. Falls back to the rendering
	// ZoneFile's default TTL when omitted.
	// +optional
	TTL *uint32 `json:"ttl,omitempty"`
	// RData is the opaque record data, exactly as it should appear in a
	// rendered zone file. Not validated against its Type's grammar.
	RData string `json:"rdata"`
}

// RecordStatus defines the observed state of a Record.
type RecordStatus struct {
	// FQDN is the resolved, absolute (trailing-dot) domain name of this Record.
	// +optional
	FQDN *string `json:"fqdn,omitempty"`
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// +optional
	ObservedGeneration *int64 `json:"observedGeneration,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:resource:scope=Namespaced

// +kubebuilder:printcolumn:name="Domain",type="string",JSONPath=".spec.domainName"
// +kubebuilder:printcolumn:name="FQDN",type="string",JSONPath=".status.fqdn"
// +kubebuilder:printcolumn:name="Type",type="string",JSONPath=".spec.type"
// +kubebuilder:printcolumn:name="RData",type="string",JSONPath=".spec.rdata"
// Record is the Schema for the records API.
type Record struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   RecordSpec   `json:"spec,omitempty"`
	Status RecordStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// RecordList contains a list of Record.
type RecordList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Record `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Record{}, &RecordList{})
}
