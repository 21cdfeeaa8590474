package sim_test

import (
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physarum/internal/agents"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
)

var _ = Describe("RenderFrame", func() {
	It("maps trail, nutrient and agents to red, green and blue", func() {
		e, err := sim.NewFromAgents(4, 4,
			[]agents.Agent{{X: 1, Y: 1}, {X: 1, Y: 1}},
			nil, sim.WithProfile(params.Extended))
		Expect(err).NotTo(HaveOccurred())
		clearField(e)

		f := e.Field()
		f.Trail[0] = 1 // half of max_density
		f.Trail[2] = 4 // saturates
		f.Nutrient[3*3+0] = 1
		f.Nutrient[3*3+2] = 0.5

		fr := e.RenderFrame()
		Expect(fr.W).To(Equal(4))
		Expect(fr.Pix).To(HaveLen(16))

		Expect(fr.At(0, 0)).To(Equal(uint32(127 << 16)))
		Expect(fr.At(2, 0)).To(Equal(uint32(255 << 16)))
		Expect(fr.At(3, 0)).To(Equal(uint32(127 << 8)))
		Expect(fr.At(1, 1)).To(Equal(uint32(50)))
		Expect(fr.At(3, 3)).To(BeZero())

		r, g, b := fr.RGB(1, 1)
		Expect([]uint8{r, g, b}).To(Equal([]uint8{0, 0, 50}))
	})

	It("scales the trail by 1 when uncapped", func() {
		e, err := sim.NewFromAgents(2, 2, nil, nil, sim.WithProfile(params.Minimal))
		Expect(err).NotTo(HaveOccurred())
		clearField(e)
		e.Field().Trail[1] = 0.5

		Expect(e.RenderFrame().At(1, 0)).To(Equal(uint32(127 << 16)))
	})

	It("converts to an opaque image", func() {
		e, err := sim.NewFromAgents(3, 2, []agents.Agent{{X: 2, Y: 1}}, nil)
		Expect(err).NotTo(HaveOccurred())
		clearField(e)

		img := e.RenderFrame().Image()
		Expect(img.Bounds().Dx()).To(Equal(3))
		Expect(img.Bounds().Dy()).To(Equal(2))
		Expect(img.RGBAAt(2, 1)).To(Equal(color.RGBA{B: 25, A: 255}))
		Expect(img.RGBAAt(0, 0)).To(Equal(color.RGBA{A: 255}))
	})
})
