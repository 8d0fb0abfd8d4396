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

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

// Default SOA/TTL values, per RFC 1035/1912.
const (
	DefaultTTL                   uint32 = 360
	DefaultRefresh               uint32 = 86400
	DefaultRetry                 uint32 = 7200
	DefaultExpire                uint32 = 3600000
	DefaultNegativeResponseCache uint32 = 360
	DefaultHistory               int32  = 10
)

// ZoneFileSpec defines the desired state of a ZoneFile.
type ZoneFileSpec struct {
	// ZoneRef points at the Zone whose subtree this ZoneFile renders.
	ZoneRef kubizonev1alpha1.ZoneRef `json:"zoneRef"`

	// TTL is the default record TTL used when a Record omits its own.
	// +kubebuilder:default:=360
	// +optional
	TTL uint32 `json:"ttl,omitempty"`
	// Refresh is the SOA refresh interval, in seconds.
	// +kubebuilder:default:=86400
	// +optional
	Refresh uint32 `json:"refresh,omitempty"`
	// Retry is the SOA retry interval, in seconds.
	// +kubebuilder:default:=7200
	// +optional
	Retry uint32 `json:"retry,omitempty"`
	// Expire is the SOA expire interval, in seconds.
	// +kubebuilder:default:=3600000
	// +optional
	Expire uint32 `json:"expire,omitempty"`
	// NegativeResponseCache is the SOA minimum/negative-cache TTL, in seconds.
	// +kubebuilder:default:=360
	// +optional
	NegativeResponseCache uint32 `json:"negativeResponseCache,omitempty"`
	// History is the number of past rendered ConfigMap revisions to retain.
	// +kubebuilder:default:=10
	// +optional
	History *int32 `json:"history,omitempty"`

	// Serial is the last serial written. Controller-owned: user writes are
	// overwritten on the next rotation.
	// +optional
	Serial uint32 `json:"serial,omitempty"`
}

// ZoneFileStatus defines the observed state of a ZoneFile.
type ZoneFileStatus struct {
	// Hash is the last upstream Zone hash materialised into a ConfigMap.
	// +optional
	Hash *string `json:"hash,omitempty"`
	// Serial is the last serial materialised.
	// +optional
	Serial *uint32 `json:"serial,omitempty"`
	// ConfigMap names the latest rendered ConfigMap.
	// +optional
	ConfigMap *string `json:"configMap,omitempty"`
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
	// +optional
	ObservedGeneration *int64 `json:"observedGeneration,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:resource:scope=Namespaced

// +kubebuilder:printcolumn:name="Zone",type="string",JSONPath=".spec.zoneRef.name"
// +kubebuilder:printcolumn:name="Serial",type="integer",JSONPath=".status.serial"
// +kubebuilder:printcolumn:name="ConfigMap",type="string",JSONPath=".status.configMap"
// ZoneFile is the Schema for the zonefiles API.
type ZoneFile struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ZoneFileSpec   `json:"spec,omitempty"`
	Status ZoneFileStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// ZoneFileList contains a list of ZoneFile.
type ZoneFileList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ZoneFile `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ZoneFile{}, &ZoneFileList{})
}

// HistoryLimit returns spec.History, defaulted to DefaultHistory.
func (z *ZoneFile) HistoryLimit() int32 {
	if z.Spec.History == nil {
		return DefaultHistory
	}
	return *z.Spec.History
}
