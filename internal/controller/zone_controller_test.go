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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	kubizonev1alpha1 "github.com/kubizone/kubizone/api/v1alpha1"
)

var _ = Describe("Zone Controller", func() {

	const (
		namespace = "example1"
		timeout   = time.Second * 5
		interval  = time.Millisecond * 250
	)

	Context("When a Zone declares a fully-qualified domainName", func() {
		It("resolves itself as a root zone", func() {
			ctx := context.Background()
			name := "root-zone"
			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "example.com.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Zones: []string{"*.example.com."}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			key := types.NamespacedName{Name: name, Namespace: namespace}
			Eventually(func() bool {
				got := &kubizonev1alpha1.Zone{}
				if err := k8sClient.Get(ctx, key, got); err != nil {
					return false
				}
				return got.Status.FQDN != nil && *got.Status.FQDN == "example.com."
			}, timeout, interval).Should(BeTrue())

			Eventually(func() float64 {
				return getResolutionMetric("Zone", name, namespace, reasonResolved)
			}, timeout, interval).Should(Equal(1.0))
		})
	})

	Context("When a Zone references a parent via zoneRef", func() {
		It("resolves its FQDN relative to the admitting parent", func() {
			ctx := context.Background()

			parent := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "parent-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "parent.example.",
					Delegations: []kubizonev1alpha1.Delegation{
						{Zones: []string{"*.parent.example."}},
					},
				},
			}
			Expect(k8sClient.Create(ctx, parent)).To(Succeed())

			child := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "child-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "child",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "parent-zone"},
				},
			}
			Expect(k8sClient.Create(ctx, child)).To(Succeed())

			key := types.NamespacedName{Name: "child-zone", Namespace: namespace}
			Eventually(func() bool {
				got := &kubizonev1alpha1.Zone{}
				if err := k8sClient.Get(ctx, key, got); err != nil {
					return false
				}
				return got.Status.FQDN != nil && *got.Status.FQDN == "child.parent.example."
			}, timeout, interval).Should(BeTrue())
		})

		It("denies a child its parent's delegations do not admit", func() {
			ctx := context.Background()

			parent := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "strict-parent", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName:  "strict.example.",
					Delegations: []kubizonev1alpha1.Delegation{{Zones: []string{"allowed.strict.example."}}},
				},
			}
			Expect(k8sClient.Create(ctx, parent)).To(Succeed())

			child := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "denied-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "forbidden",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "strict-parent"},
				},
			}
			Expect(k8sClient.Create(ctx, child)).To(Succeed())

			// A denied zone is never written to: the denial only shows up
			// in the resolution metric, and status stays empty.
			Eventually(func() float64 {
				return getResolutionMetric("Zone", "denied-zone", namespace, reasonDelegationDenied)
			}, timeout, interval).Should(Equal(1.0))

			key := types.NamespacedName{Name: "denied-zone", Namespace: namespace}
			got := &kubizonev1alpha1.Zone{}
			Expect(k8sClient.Get(ctx, key, got)).To(Succeed())
			Expect(got.Status.FQDN).To(BeNil())
			Expect(got.Status.Conditions).To(BeEmpty())
			Expect(got.Labels[kubizonev1alpha1.ParentZoneLabel]).To(BeEmpty())
		})
	})

	Context("When a Zone has both zoneRef and a fully-qualified domainName", func() {
		It("reports a configuration error", func() {
			ctx := context.Background()
			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "conflicting-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName: "conflict.example.",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "doesnt-matter"},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			// A misconfigured zone is never written to: the error only
			// shows up in the resolution metric, and status stays empty.
			Eventually(func() float64 {
				return getResolutionMetric("Zone", "conflicting-zone", namespace, reasonConfigurationErr)
			}, timeout, interval).Should(Equal(1.0))

			key := types.NamespacedName{Name: "conflicting-zone", Namespace: namespace}
			got := &kubizonev1alpha1.Zone{}
			Expect(k8sClient.Get(ctx, key, got)).To(Succeed())
			Expect(got.Status.FQDN).To(BeNil())
			Expect(got.Status.Conditions).To(BeEmpty())
		})
	})

	Context("When a Zone gains a child Record", func() {
		It("recomputes its content hash", func() {
			ctx := context.Background()

			zone := &kubizonev1alpha1.Zone{
				ObjectMeta: metav1.ObjectMeta{Name: "hashed-zone", Namespace: namespace},
				Spec: kubizonev1alpha1.ZoneSpec{
					DomainName:  "hashed.example.",
					Delegations: []kubizonev1alpha1.Delegation{{Zones: []string{"*.hashed.example."}}, {Records: []kubizonev1alpha1.RecordDelegation{{Pattern: "*.hashed.example."}}}},
				},
			}
			Expect(k8sClient.Create(ctx, zone)).To(Succeed())

			zoneKey := types.NamespacedName{Name: "hashed-zone", Namespace: namespace}
			var firstHash *string
			Eventually(func() bool {
				got := &kubizonev1alpha1.Zone{}
				if err := k8sClient.Get(ctx, zoneKey, got); err != nil {
					return false
				}
				firstHash = got.Status.Hash
				return got.Status.Hash != nil
			}, timeout, interval).Should(BeTrue())

			record := &kubizonev1alpha1.Record{
				ObjectMeta: metav1.ObjectMeta{Name: "www-record", Namespace: namespace},
				Spec: kubizonev1alpha1.RecordSpec{
					DomainName: "www",
					ZoneRef:    &kubizonev1alpha1.ZoneRef{Name: "hashed-zone"},
					Type:       "A",
					RData:      "203.0.113.10",
				},
			}
			Expect(k8sClient.Create(ctx, record)).To(Succeed())

			Eventually(func() bool {
				got := &kubizonev1alpha1.Zone{}
				if err := k8sClient.Get(ctx, zoneKey, got); err != nil {
					return false
				}
				return got.Status.Hash != nil && (firstHash == nil || *got.Status.Hash != *firstHash)
			}, timeout, interval).Should(BeTrue())
		})
	})
})
