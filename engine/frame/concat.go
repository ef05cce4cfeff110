package frame

import "fmt"

// HConcat places the frames left to right. All frames must share width and height.
func HConcat(frames ...*RGB) (*RGB, error) {
	if err := sameSize(frames); err != nil {
		return nil, err
	}
	w, h := frames[0].Width, frames[0].Height
	out := NewRGB(w*len(frames), h)
	rowBytes := w * 3
	for i, f := range frames {
		for y := 0; y < h; y++ {
			dst := out.Offset(i*w, y)
			copy(out.Pix[dst:dst+rowBytes], f.Pix[y*rowBytes:(y+1)*rowBytes])
		}
	}
	return out, nil
}

// VConcat stacks the frames top to bottom. All frames must share width and height.
func VConcat(frames ...*RGB) (*RGB, error) {
	if err := sameSize(frames); err != nil {
		return nil, err
	}
	w, h := frames[0].Width, frames[0].Height
	out := NewRGB(w, h*len(frames))
	plane := w * h * 3
	for i, f := range frames {
		copy(out.Pix[i*plane:(i+1)*plane], f.Pix)
	}
	return out, nil
}

func sameSize(frames []*RGB) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to concatenate")
	}
	for i, f := range frames {
		if f == nil {
			return fmt.Errorf("frame %d is nil", i)
		}
		if err := CheckSize(frames[0], f); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

