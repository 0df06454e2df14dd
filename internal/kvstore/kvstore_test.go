package kvstore_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/fileflow/relay/internal/kvstore"
)

var _ = Describe("Store", func() {
	It("round-trips a value until it expires", func() {
		s := kvstore.New[string]("test")
		s.Insert("k", "v", 50*time.Millisecond)

		e, ok := s.Get("k")
		Expect(ok).To(BeTrue())
		Expect(e.Value).To(Equal("v"))

		Eventually(func() bool {
			_, ok := s.Get("k")
			return ok
		}, "3s", "100ms").Should(BeFalse())
	})

	It("refuses InsertIfAbsent on collision", func() {
		s := kvstore.New[int]("test")
		Expect(s.InsertIfAbsent("k", 1, time.Minute)).To(BeTrue())
		Expect(s.InsertIfAbsent("k", 2, time.Minute)).To(BeFalse())

		e, ok := s.Get("k")
		Expect(ok).To(BeTrue())
		Expect(e.Value).To(Equal(1))
	})

	It("fails Update against a missing key without resurrecting it", func() {
		s := kvstore.New[int]("test")
		ok := s.Update("missing", 1, time.Now().Add(time.Minute))
		Expect(ok).To(BeFalse())
		_, present := s.Get("missing")
		Expect(present).To(BeFalse())
	})

	It("preserves the caller-supplied expiry across Update", func() {
		s := kvstore.New[int]("test")
		s.Insert("k", 1, time.Minute)
		exp := time.Now().Add(10 * time.Millisecond)
		Expect(s.Update("k", 2, exp)).To(BeTrue())

		Eventually(func() bool {
			_, ok := s.Get("k")
			return ok
		}, "3s", "100ms").Should(BeFalse())
	})

	It("applies UpdateIf only when the mutator accepts", func() {
		s := kvstore.New[int]("test")
		s.Insert("k", 1, time.Minute)

		applied := s.UpdateIf("k", func(v int, ok bool) (int, bool) {
			Expect(ok).To(BeTrue())
			return v + 1, v == 1
		})
		Expect(applied).To(BeTrue())
		e, _ := s.Get("k")
		Expect(e.Value).To(Equal(2))

		rejected := s.UpdateIf("k", func(v int, ok bool) (int, bool) {
			return v, false
		})
		Expect(rejected).To(BeFalse())
	})

	It("notifies the eviction hook for swept entries only", func() {
		s := kvstore.New[string]("test")
		evicted := make(chan string, 4)
		s.OnEvict(func(key string, _ string) { evicted <- key })

		s.Insert("gone", "v", 10*time.Millisecond)
		s.Insert("kept", "v", time.Minute)
		s.Insert("removed", "v", time.Minute)
		s.Remove("removed")

		Eventually(evicted, "3s", "100ms").Should(Receive(Equal("gone")))
		Consistently(evicted, "1100ms", "100ms").ShouldNot(Receive())
	})

	It("counts by prefix and removes by exact key", func() {
		s := kvstore.New[int]("test")
		s.Insert("room:a", 1, time.Minute)
		s.Insert("room:b", 2, time.Minute)
		s.Insert("other", 3, time.Minute)

		Expect(s.CountPrefix("room:", 10)).To(Equal(2))
		Expect(s.CountPrefix("room:", 1)).To(Equal(1))
		Expect(s.Len()).To(Equal(3))

		_, ok := s.Remove("room:a")
		Expect(ok).To(BeTrue())
		_, ok = s.Remove("room:a")
		Expect(ok).To(BeFalse())
	})
})
