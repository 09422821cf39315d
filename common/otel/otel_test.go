package otel

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/core/config"
)

var _ = Describe("parseHeaders", func() {
	It("splits comma separated pairs and trims whitespace", func() {
		Expect(parseHeaders("Authorization=Bearer abc, x-team = care")).To(Equal(map[string]string{
			"Authorization": "Bearer abc",
			"x-team":        "care",
		}))
	})

	It("skips malformed pairs", func() {
		Expect(parseHeaders("novalue,a=b")).To(Equal(map[string]string{"a": "b"}))
		Expect(parseHeaders("")).To(BeEmpty())
	})
})

var _ = Describe("Setup", func() {
	It("is a no-op without an endpoint", func() {
		tel, err := Setup(context.Background(), config.OTelConfig{ServiceName: "companion"}, "test")
		Expect(err).NotTo(HaveOccurred())
		Expect(tel).To(BeNil())
	})
})
