package underserved

import (
	"image"
	"net/url"
	"testing"
)

func TestParseTransform(t *testing.T) {
	tests := []struct {
		query   string
		want    Transform
		wantErr bool
	}{
		{"", Transform{}, false},
		{"w=1200&h=630&fit=crop&auto=format", Transform{Width: 1200, Height: 630, Crop: true}, false},
		{"w=300", Transform{Width: 300}, false},
		{"w=99999", Transform{Width: maxMediaDimension}, false},
		{"h=0", Transform{}, true},
		{"w=-5", Transform{}, true},
		{"w=wide", Transform{}, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseTransform(q)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTransform(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTransform(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestTransformApply(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	tests := []struct {
		name string
		t    Transform
		want image.Rectangle
	}{
		{"untouched", Transform{}, image.Rect(0, 0, 800, 600)},
		{"width only", Transform{Width: 400}, image.Rect(0, 0, 400, 300)},
		{"height only", Transform{Height: 150}, image.Rect(0, 0, 200, 150)},
		{"fit inside box", Transform{Width: 400, Height: 100}, image.Rect(0, 0, 133, 100)},
		{"crop", Transform{Width: 200, Height: 200, Crop: true}, image.Rect(0, 0, 200, 200)},
		{"crop never upscales", Transform{Width: 1200, Height: 630, Crop: true}, image.Rect(0, 0, 800, 420)},
		{"no upscale", Transform{Width: 2000}, image.Rect(0, 0, 800, 600)},
	}
	for _, tt := range tests {
		if got := tt.t.Apply(src).Bounds(); got != tt.want {
			t.Errorf("%s: bounds = %v, want %v", tt.name, got, tt.want)
		}
	}
}
