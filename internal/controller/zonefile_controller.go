/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package controller

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
	zonefilev1alpha1 "github.com/kubizone/kubizone/api/zonefile/v1alpha1"
	"github.com/kubizone/kubizone/internal/zonelogic"
)

const dataKey = "zonefile"

// ZoneFileReconciler renders a ZoneFile's target Zone subtree to an
// RFC-1035 text ConfigMap whenever the Zone's content hash changes.
type ZoneFileReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

//+kubebuilder:rbac:groups=zonefile.kubi.zone,resources=zonefiles,verbs=get;list;watch;update;patch
//+kubebuilder:rbac:groups=zonefile.kubi.zone,resources=zonefiles/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=zones,verbs=get;list;watch;patch
//+kubebuilder:rbac:groups=kubi.zone,resources=records,verbs=get;list;watch
//+kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch;create;update;patch;delete

func (r *ZoneFileReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	zf := &zonefilev1alpha1.ZoneFile{}
	if err := r.Get(ctx, req.NamespacedName, zf); err != nil {
		if errors.IsNotFound(err) {
			removeRenderMetric(req.Name, req.Namespace)
		}
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	zoneName, zoneNamespace := resolveZoneRef(&zf.Spec.ZoneRef, zf.Namespace)
	zone := &kubizonev1alpha1.Zone{}
	if err := r.Get(ctx, types.NamespacedName{Name: zoneName, Namespace: zoneNamespace}, zone); err != nil {
		if errors.IsNotFound(err) {
			logger.Info("target zone not found, requeueing", "zonefile", zf.Name, "zone", zoneName)
			updateRenderMetric(zf.Name, zf.Namespace, reasonParentNotFound)
			return ctrl.Result{RequeueAfter: requeueNotFound * time.Second}, nil
		}
		return ctrl.Result{}, err
	}

	if err := r.applyBackrefLabel(ctx, zone, zf); err != nil {
		return ctrl.Result{}, err
	}

	if zone.Status.Hash == nil {
		updateRenderMetric(zf.Name, zf.Namespace, reasonParentNotReady)
		return ctrl.Result{RequeueAfter: requeuePrerequisite * time.Second}, nil
	}

	if zf.Status.Hash != nil && *zf.Status.Hash == *zone.Status.Hash {
		updateRenderMetric(zf.Name, zf.Namespace, "steady-state")
		return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, nil
	}

	next := zonelogic.NextSerial(zf.Spec.Serial, time.Now())

	records, err := r.listRenderRecords(ctx, zone)
	if err != nil {
		return ctrl.Result{}, err
	}

	text := zonelogic.RenderZoneFile(zonelogic.RenderParams{
		FQDN:                  ptr.Deref(zone.Status.FQDN, zone.Spec.DomainName),
		Serial:                next,
		Refresh:               valueOr(zf.Spec.Refresh, zonefilev1alpha1.DefaultRefresh),
		Retry:                 valueOr(zf.Spec.Retry, zonefilev1alpha1.DefaultRetry),
		Expire:                valueOr(zf.Spec.Expire, zonefilev1alpha1.DefaultExpire),
		NegativeResponseCache: valueOr(zf.Spec.NegativeResponseCache, zonefilev1alpha1.DefaultNegativeResponseCache),
		DefaultTTL:            valueOr(zf.Spec.TTL, zonefilev1alpha1.DefaultTTL),
		Records:               records,
	})

	name := configMapName(zf.Name, next)
	if err := r.applyConfigMap(ctx, zf, name, text); err != nil {
		return ctrl.Result{}, err
	}

	if err := r.patchSerial(ctx, zf, next); err != nil {
		return ctrl.Result{}, err
	}

	if err := r.patchRenderStatus(ctx, zf, *zone.Status.Hash, next, name); err != nil {
		return ctrl.Result{}, err
	}

	if err := r.enforceHistory(ctx, zf); err != nil {
		return ctrl.Result{}, err
	}

	updateRenderMetric(zf.Name, zf.Namespace, "rendered")
	return ctrl.Result{RequeueAfter: requeueSteadyState * time.Second}, nil
}

func valueOr(v, def uint32) uint32 {
	if v == 0 {
		return def
	}
	return v
}

func (r *ZoneFileReconciler) applyBackrefLabel(ctx context.Context, zone *kubizonev1alpha1.Zone, zf *zonefilev1alpha1.ZoneFile) error {
	want := kubizonev1alpha1.ZoneReferenceLabel(zf.Name, zf.Namespace)
	if zone.Labels != nil && zone.Labels[kubizonev1alpha1.ZoneFileLabel] == want {
		return nil
	}
	original := zone.DeepCopy()
	if zone.Labels == nil {
		zone.Labels = map[string]string{}
	}
	zone.Labels[kubizonev1alpha1.ZoneFileLabel] = want
	return r.Patch(ctx, zone, client.MergeFrom(original))
}

func (r *ZoneFileReconciler) listRenderRecords(ctx context.Context, zone *kubizonev1alpha1.Zone) ([]zonelogic.RenderRecord, error) {
	var records kubizonev1alpha1.RecordList
	if err := r.List(ctx, &records, parentZoneLabelSelector(zone.Name, zone.Namespace)); err != nil {
		return nil, err
	}

	out := make([]zonelogic.RenderRecord, 0, len(records.Items))
	for _, rec := range records.Items {
		if rec.Status.FQDN == nil {
			continue
		}
		class := rec.Spec.Class
		if class == "" {
			class = kubizonev1alpha1.DefaultRecordClass
		}
		out = append(out, zonelogic.RenderRecord{
			DomainName: rec.Spec.DomainName,
			FQDN:       *rec.Status.FQDN,
			Type:       rec.Spec.Type,
			Class:      class,
			TTL:        rec.Spec.TTL,
			RData:      rec.Spec.RData,
		})
	}
	return out, nil
}

func (r *ZoneFileReconciler) applyConfigMap(ctx context.Context, zf *zonefilev1alpha1.ZoneFile, name, text string) error {
	cm := &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: zf.Namespace,
		},
		Data: map[string]string{dataKey: text},
	}
	if err := ctrl.SetControllerReference(zf, cm, r.Scheme); err != nil {
		return err
	}
	return r.Patch(ctx, cm, client.Apply, client.ForceOwnership, client.FieldOwner(fieldManagerZoneFile))
}

func (r *ZoneFileReconciler) patchSerial(ctx context.Context, zf *zonefilev1alpha1.ZoneFile, next uint32) error {
	original := zf.DeepCopy()
	zf.Spec.Serial = next
	return r.Patch(ctx, zf, client.MergeFrom(original))
}

func (r *ZoneFileReconciler) patchRenderStatus(ctx context.Context, zf *zonefilev1alpha1.ZoneFile, hash string, serial uint32, configMap string) error {
	original := zf.DeepCopy()
	zf.Status.Hash = ptr.To(hash)
	zf.Status.Serial = ptr.To(serial)
	zf.Status.ConfigMap = ptr.To(configMap)
	zf.Status.ObservedGeneration = ptr.To(zf.GetGeneration())
	return r.Status().Patch(ctx, zf, client.MergeFrom(original))
}

// enforceHistory lists every ConfigMap owned by zf, and deletes all but the
// HistoryLimit() most recent by serial.
func (r *ZoneFileReconciler) enforceHistory(ctx context.Context, zf *zonefilev1alpha1.ZoneFile) error {
	var cms corev1.ConfigMapList
	if err := r.List(ctx, &cms, client.InNamespace(zf.Namespace)); err != nil {
		return err
	}

	owned := make([]corev1.ConfigMap, 0, len(cms.Items))
	for _, cm := range cms.Items {
		if controllerutil.HasControllerReference(&cm) && ownerIsZoneFile(&cm, zf) {
			owned = append(owned, cm)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return configMapSerial(owned[i].Name, zf.Name) > configMapSerial(owned[j].Name, zf.Name)
	})

	limit := int(zf.HistoryLimit())
	if limit < 0 {
		limit = 0
	}
	if len(owned) <= limit {
		return nil
	}
	for _, cm := range owned[limit:] {
		if err := r.Delete(ctx, &cm); err != nil && !errors.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// configMapSerial parses the trailing "-<serial>" suffix of a ConfigMap
// name produced for zoneFileName; unparseable names sort last.
func configMapSerial(name, zoneFileName string) uint64 {
	suffix := strings.TrimPrefix(name, zoneFileName+"-")
	if suffix == name {
		return 0
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func ownerIsZoneFile(cm *corev1.ConfigMap, zf *zonefilev1alpha1.ZoneFile) bool {
	for _, ref := range cm.OwnerReferences {
		if ref.Kind == "ZoneFile" && ref.UID == zf.UID {
			return true
		}
	}
	return false
}

// SetupWithManager sets up the controller with the Manager.
func (r *ZoneFileReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&zonefilev1alpha1.ZoneFile{}).
		Owns(&corev1.ConfigMap{}).
		Watches(
			&kubizonev1alpha1.Zone{},
			handler.EnqueueRequestsFromMapFunc(r.mapByZoneFileLabel),
		).
		Complete(r)
}

func (r *ZoneFileReconciler) mapByZoneFileLabel(ctx context.Context, obj client.Object) []ctrl.Request {
	labels := obj.GetLabels()
	value, ok := labels[kubizonev1alpha1.ZoneFileLabel]
	if !ok {
		return nil
	}
	name, namespace, ok := splitZoneReferenceLabel(value)
	if !ok {
		return nil
	}
	return []ctrl.Request{{NamespacedName: types.NamespacedName{Name: name, Namespace: namespace}}}
}
