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
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
	zonefilev1alpha1 "github.com/kubizone/kubizone/api/zonefile/v1alpha1"
)

var _ = Describe("ZoneFile Controller", func() {

	const (
		namespace = "example2"
		timeout   = time.Second * 5
		interval  = time.Millisecond * 250
	)

	Context("When a ZoneFile targets a resolved Zone", func() {
		It("renders a ConfigMap and backfills its status", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "render-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "render.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.render.example."}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "www-render", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "www.render.example.",
					Type:       "A",
					RData:      "203.0.113.20",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			Eventually(func() *string {
				got := &kubizonev1alpha1.Zone{}
				_ = k8sClient.Get(ctx, types.NamespacedName{Name: "render-zone", Namespace: namespace}, got)
				return got.Status.Hash
			}, timeout, interval).ShouldNot(BeNil())

			zf := &zonefilev1alpha1.ZoneFile{
				ObjectMeta: metav1.ObjectMeta{Name: "render-zonefile", Namespace: namespace},
				Spec: zonefilev1alpha1.ZoneFileSpec{
					ZoneRef: kubizonev1alpha1.ZoneRef{Name: "render-zone"},
				},
			}
			Expect(k8sClient.Create(ctx, zf)).To(Succeed())

			zfKey := types.NamespacedName{Name: "render-zonefile", Namespace: namespace}
			var configMapName string
			Eventually(func() bool {
				got := &zonefilev1alpha1.ZoneFile{}
				if err := k8sClient.Get(ctx, zfKey, got); err != nil {
					return false
				}
				if got.Status.ConfigMap == nil {
					return false
				}
				configMapName = *got.Status.ConfigMap
				return true
			}, timeout, interval).Should(BeTrue())

			cm := &corev1.ConfigMap{}
			Expect(k8sClient.Get(ctx, types.NamespacedName{Name: configMapName, Namespace: namespace}, cm)).To(Succeed())
			Expect(cm.Data["zonefile"]).To(ContainSubstring("$ORIGIN render.example."))
			Expect(cm.Data["zonefile"]).To(ContainSubstring("www 360 IN A 203.0.113.20"))
			Expect(cm.OwnerReferences).To(HaveLen(1))
			Expect(cm.OwnerReferences[0].Name).To(Equal("render-zonefile"))

			Eventually(func() float64 {
				return getRenderMetric("render-zonefile", namespace, "rendered")
			}, timeout, interval).Should(Equal(1.0))
		})
	})

	Context("When the target Zone's hash changes", func() {
		It("rotates the serial and publishes a new ConfigMap", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "rotate-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "rotate.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.rotate.example."}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			Eventually(func() *string {
				got := &kubizonev1alpha1.Zone{}
				_ = k8sClient.Get(ctx, types.NamespacedName{Name: "rotate-zone", Namespace: namespace}, got)
				return got.Status.Hash
			}, timeout, interval).ShouldNot(BeNil())

			zf := &zonefilev1alpha1.ZoneFile{
				ObjectMeta: metav1.ObjectMeta{Name: "rotate-zonefile", Namespace: namespace},
				Spec: zonefilev1alpha1.ZoneFileSpec{
					ZoneRef: kubizonev1alpha1.ZoneRef{Name: "rotate-zone"},
				},
			}
			Expect(k8sClient.Create(ctx, zf)).To(Succeed())

			zfKey := types.NamespacedName{Name: "rotate-zonefile", Namespace: namespace}
			var firstSerial uint32
			Eventually(func() bool {
				got := &zonefilev1alpha1.ZoneFile{}
				if err := k8sClient.Get(ctx, zfKey, got); err != nil {
					return false
				}
				if got.Status.Serial == nil {
					return false
				}
				firstSerial = *got.Status.Serial
				return true
			}, timeout, interval).Should(BeTrue())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "www-rotate", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "www.rotate.example.",
					Type:       "A",
					RData:      "203.0.113.30",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			Eventually(func() bool {
				got := &zonefilev1alpha1.ZoneFile{}
				if err := k8sClient.Get(ctx, zfKey, got); err != nil {
					return false
				}
				return got.Status.Serial != nil && *got.Status.Serial > firstSerial
			}, timeout, interval).Should(BeTrue())
		})
	})

	Context("When a ZoneFile has produced more ConfigMaps than its history limit", func() {
		It("retains only the most recent ones", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "history-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "history.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.history.example."}}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			Eventually(func() *string {
				got := &kubizonev1alpha1.Zone{}
				_ = k8sClient.Get(ctx, types.NamespacedName{Name: "history-zone", Namespace: namespace}, got)
				return got.Status.Hash
			}, timeout, interval).ShouldNot(BeNil())

			zf := &zonefilev1alpha1.ZoneFile{
				ObjectMeta: metav1.ObjectMeta{Name: "history-zonefile", Namespace: namespace},
				Spec: zonefilev1alpha1.ZoneFileSpec{
					ZoneRef: kubizonev1alpha1.ZoneRef{Name: "history-zone"},
					History: ptr.To(int32(2)),
				},
			}
			Expect(k8sClient.Create(ctx, zf)).To(Succeed())

			zfKey := types.NamespacedName{Name: "history-zonefile", Namespace: namespace}
			Eventually(func() bool {
				got := &zonefilev1alpha1.ZoneFile{}
				if err := k8sClient.Get(ctx, zfKey, got); err != nil {
					return false
				}
				return got.Status.ConfigMap != nil
			}, timeout, interval).Should(BeTrue())

			// Force three additional hash changes by adding a new child
			// Record each time, each of which should trigger a new render.
			for i := 0; i < 3; i++ {
				zoneKey := types.NamespacedName{Name: "history-zone", Namespace: namespace}
				before := &kubizonev1alpha1.Zone{}
				Expect(k8sClient.Get(ctx, zoneKey, before)).To(Succeed())
				previousHash := before.Status.Hash

				record := &kubizonev1alpha1.Record{
					ObjectMeta: metav1.ObjectMeta{Name: "history-record-" + string(rune('a'+i)), Namespace: namespace},
					Spec: kubizonev1alpha1.RecordSpec{
						DomainName: "host" + string(rune('a'+i)) + ".history.example.",
						Type:       "A",
						RData:      "203.0.113.40",
					},
				}
				Expect(k8sClient.Create(ctx, record)).To(Succeed())

				Eventually(func() bool {
					refreshed := &kubizonev1alpha1.Zone{}
					if err := k8sClient.Get(ctx, zoneKey, refreshed); err != nil {
						return false
					}
					return refreshed.Status.Hash != nil && (previousHash == nil || *refreshed.Status.Hash != *previousHash)
				}, timeout, interval).Should(BeTrue())
			}

			Eventually(func() int {
				var cms corev1.ConfigMapList
				if err := k8sClient.List(ctx, &cms, client.InNamespace(namespace)); err != nil {
					return -1
				}
				count := 0
				for _, cm := range cms.Items {
					if strings.HasPrefix(cm.Name, "history-zonefile-") {
						count++
					}
				}
				return count
			}, timeout, interval).Should(Equal(2))
		})
	})
})
