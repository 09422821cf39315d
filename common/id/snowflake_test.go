package id_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/common/id"
)

var _ = Describe("New", func() {
	It("generates increasing unique IDs without explicit Init", func() {
		seen := make(map[int64]struct{})
		prev := int64(0)
		for range 1000 {
			v := id.New()
			Expect(v).To(BeNumerically(">", prev))
			seen[v] = struct{}{}
			prev = v
		}
		Expect(seen).To(HaveLen(1000))
	})
})

var _ = Describe("Init", func() {
	It("rejects node IDs outside the snowflake range", func() {
		Expect(id.Init(5000)).To(MatchError(ContainSubstring("init snowflake node 5000")))
		Expect(id.New()).To(BeNumerically(">", 0))
	})

	It("refuses to replace a node already in use", func() {
		Expect(id.New()).To(BeNumerically(">", 0))

		err := id.Init(5)
		Expect(err).To(MatchError(id.ErrAlreadyInitialized))
		Expect(id.New()).To(BeNumerically(">", 0))
	})
})
