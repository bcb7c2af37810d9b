package visualizer_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/voxgrid/internal/visualizer"
)

type tickLog struct {
	mu      sync.Mutex
	indices []int
}

func (l *tickLog) record(i int) {
	l.mu.Lock()
	l.indices = append(l.indices, i)
	l.mu.Unlock()
}

func (l *tickLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.indices)
}

func (l *tickLog) snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.indices...)
}

var _ = Describe("Animator", func() {
	const rows, cols = 5, 5
	var (
		anim *visualizer.Animator
		log  *tickLog
		opts visualizer.AnimationOptions
	)

	BeforeEach(func() {
		opts = visualizer.AnimationOptions{Interval: 5 * time.Millisecond, ConnectingRing: 1}
		anim = visualizer.NewAnimator(rows, cols, opts, nil)
		log = &tickLog{}
		anim.OnTick(log.record)
	})

	AfterEach(func() {
		anim.Stop()
	})

	It("starts paused with no highlight", func() {
		Expect(anim.State()).To(Equal(visualizer.AnimatorPaused))
		Expect(anim.Index()).To(Equal(visualizer.NoHighlight))
	})

	It("ticks inside the grid while the agent is not speaking", func() {
		anim.Update(context.Background(), visualizer.StateListening)
		Expect(anim.State()).To(Equal(visualizer.AnimatorActive))

		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 5))
		for _, idx := range log.snapshot() {
			Expect(idx).To(BeNumerically(">=", 0))
			Expect(idx).To(BeNumerically("<", rows*cols))
		}
		Expect(anim.Index()).NotTo(Equal(visualizer.NoHighlight))
	})

	It("follows the ring while connecting", func() {
		ring := map[int]bool{}
		for _, idx := range visualizer.Ring(rows, cols, 1) {
			ring[idx] = true
		}

		anim.Update(context.Background(), visualizer.StateConnecting)
		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 8))
		anim.Stop()

		for _, idx := range log.snapshot() {
			Expect(ring).To(HaveKey(idx))
		}
	})

	It("stops ticking once the agent speaks", func() {
		ctx := context.Background()
		anim.Update(ctx, visualizer.StateThinking)
		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 2))

		anim.Update(ctx, visualizer.StateSpeaking)
		Expect(anim.State()).To(Equal(visualizer.AnimatorPaused))
		Expect(anim.Index()).To(Equal(visualizer.NoHighlight))

		stoppedAt := log.count()
		Consistently(log.count).
			WithTimeout(100 * time.Millisecond).
			WithPolling(5 * time.Millisecond).
			Should(Equal(stoppedAt))
	})

	It("emits nothing after Stop returns", func() {
		anim.Update(context.Background(), visualizer.StateListening)
		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 1))

		anim.Stop()
		stoppedAt := log.count()
		Consistently(log.count).
			WithTimeout(100 * time.Millisecond).
			WithPolling(5 * time.Millisecond).
			Should(Equal(stoppedAt))
	})

	It("stops when the parent context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		anim.Update(ctx, visualizer.StateListening)
		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 1))

		cancel()
		Eventually(anim.State).WithTimeout(time.Second).Should(Equal(visualizer.AnimatorPaused))

		stoppedAt := log.count()
		Consistently(log.count).
			WithTimeout(50 * time.Millisecond).
			WithPolling(5 * time.Millisecond).
			Should(Equal(stoppedAt))
	})

	It("resumes after a pause from tick zero", func() {
		ctx := context.Background()
		anim.Update(ctx, visualizer.StateListening)
		Eventually(anim.Ticks).WithTimeout(time.Second).Should(BeNumerically(">=", 3))

		anim.Update(ctx, visualizer.StateSpeaking)
		anim.Update(ctx, visualizer.StateListening)
		Expect(anim.Ticks()).To(BeNumerically("<", 3))
		Eventually(log.count).WithTimeout(time.Second).Should(BeNumerically(">=", 4))
	})

	Describe("Advance", func() {
		It("steps the path deterministically", func() {
			raster := visualizer.NewAnimator(2, 3, opts, visualizer.RasterScan{})
			got := make([]int, 0, 8)
			for i := 0; i < 8; i++ {
				got = append(got, raster.Advance())
			}
			Expect(got).To(Equal([]int{0, 1, 2, 3, 4, 5, 0, 1}))
		})

		It("reports no highlight for an empty grid", func() {
			empty := visualizer.NewAnimator(0, 0, opts, nil)
			Expect(empty.Advance()).To(Equal(visualizer.NoHighlight))
		})

		It("wraps out-of-range path results into the grid", func() {
			wild := visualizer.PathFunc(func(rows, cols int, _ visualizer.AgentState, tick int) int {
				return -7 + tick*100
			})
			a := visualizer.NewAnimator(2, 2, opts, wild)
			for i := 0; i < 10; i++ {
				idx := a.Advance()
				Expect(idx).To(BeNumerically(">=", 0))
				Expect(idx).To(BeNumerically("<", 4))
			}
		})

		It("clears the highlight on resize", func() {
			a := visualizer.NewAnimator(2, 2, opts, visualizer.RasterScan{})
			a.Advance()
			a.Resize(3, 3)
			Expect(a.Index()).To(Equal(visualizer.NoHighlight))
			Expect(a.Advance()).To(Equal(0))
		})
	})
})
