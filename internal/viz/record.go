package viz

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// Recorder collects frames for a GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int
}

// NewRecorder returns a recorder whose frames last delay hundredths of a
// second.
func NewRecorder(delay int) *Recorder {
	return &Recorder{delay: delay}
}

// Capture quantises img to the web-safe palette and appends it.
func (r *Recorder) Capture(img image.Image) {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.WebSafe)
	draw.Draw(p, b, img, b.Min, draw.Src)
	r.frames = append(r.frames, p)
}

func (r *Recorder) Len() int { return len(r.frames) }

// Save writes the frames as a looping GIF. It does nothing when empty.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
