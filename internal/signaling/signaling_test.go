package signaling_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/fileflow/relay/internal/meta"
	"github.com/fileflow/relay/internal/signaling"
)

var _ = Describe("Registry", func() {
	var reg *signaling.Registry

	BeforeEach(func() {
		reg = signaling.NewRegistry(meta.NewRegistry())
	})

	It("allows at most one sender and one receiver per room", func() {
		_, ok := reg.Join("room1", signaling.RoleSender, "")
		Expect(ok).To(BeTrue())

		_, ok = reg.Join("room1", signaling.RoleSender, "")
		Expect(ok).To(BeFalse())

		_, ok = reg.Join("room1", signaling.RoleReceiver, "rid-a")
		Expect(ok).To(BeTrue())

		_, ok = reg.Join("room1", signaling.RoleReceiver, "rid-b")
		Expect(ok).To(BeFalse())
	})

	It("forwards a message to the opposite peer only", func() {
		sender, _ := reg.Join("room2", signaling.RoleSender, "")
		receiver, _ := reg.Join("room2", signaling.RoleReceiver, "rid")

		Expect(reg.Opposite("room2", sender)).To(Equal(receiver))
		Expect(reg.Opposite("room2", receiver)).To(Equal(sender))

		reg.Opposite("room2", sender).Send([]byte("hello"))
		Eventually(receiver.Outbound()).Should(Receive(Equal([]byte("hello"))))
		Expect(sender.Outbound()).NotTo(Receive())
	})

	It("frees a slot and deletes an emptied room on Leave", func() {
		sender, _ := reg.Join("room3", signaling.RoleSender, "")
		reg.Leave("room3", sender)
		Expect(reg.OldestRoomIdle()).To(BeZero())

		// room3 should now accept a fresh sender since it was deleted
		_, ok := reg.Join("room3", signaling.RoleSender, "")
		Expect(ok).To(BeTrue())
	})

	It("reports zero idle age with no rooms and a real one after a join", func() {
		Expect(reg.OldestRoomIdle()).To(BeZero())
		_, ok := reg.Join("room5", signaling.RoleSender, "")
		Expect(ok).To(BeTrue())
		Expect(reg.OldestRoomIdle()).To(BeNumerically(">=", 0))
	})

	It("ignores a Leave from a stale connection that already lost its slot", func() {
		first, _ := reg.Join("room4", signaling.RoleSender, "")
		reg.Leave("room4", first)
		second, ok := reg.Join("room4", signaling.RoleSender, "")
		Expect(ok).To(BeTrue())

		// first's Leave call arriving late must not evict second's slot
		reg.Leave("room4", first)
		Expect(reg.Opposite("room4", second)).To(BeNil())

		// still occupied: a third sender must be rejected
		_, ok = reg.Join("room4", signaling.RoleSender, "")
		Expect(ok).To(BeFalse())
	})
})
