package models

// MaxImagesPerVariant caps how many images a single variant may hold.
// Enforced client-side before any upload is attempted.
const MaxImagesPerVariant = 6

// VariantImage describes one hosted image inside a variant's collection.
// Field names follow the upstream variants endpoint wire format.
type VariantImage struct {
	URL         string `json:"url"`
	PublicID    string `json:"public_id"`
	Alt         string `json:"alt"`
	DeleteToken string `json:"token"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
}

// VariantImageSet is the ordered image collection for one variant plus its
// designated primary image. Invariant: when Images is non-empty, Primary
// equals exactly one image's public ID; when empty, Primary is "".
type VariantImageSet struct {
	Primary string         `json:"isPrimary"`
	Images  []VariantImage `json:"images"`
}

// Add appends img and promotes it to primary when the set had none.
func (s *VariantImageSet) Add(img VariantImage) {
	s.Images = append(s.Images, img)
	if s.Primary == "" {
		s.Primary = img.PublicID
	}
}

// Remove deletes the image with the given public ID. If it was primary the
// first remaining image is promoted; an emptied set clears Primary.
func (s *VariantImageSet) Remove(publicID string) (VariantImage, bool) {
	for i, img := range s.Images {
		if img.PublicID != publicID {
			continue
		}
		s.Images = append(s.Images[:i], s.Images[i+1:]...)
		if s.Primary == publicID {
			if len(s.Images) > 0 {
				s.Primary = s.Images[0].PublicID
			} else {
				s.Primary = ""
			}
		}
		return img, true
	}
	return VariantImage{}, false
}

// SetPrimary designates an existing image as primary.
func (s *VariantImageSet) SetPrimary(publicID string) bool {
	for _, img := range s.Images {
		if img.PublicID == publicID {
			s.Primary = publicID
			return true
		}
	}
	return false
}

// CheckInvariant reports whether the primary designation is consistent with
// the image collection.
func (s VariantImageSet) CheckInvariant() bool {
	if len(s.Images) == 0 {
		return s.Primary == ""
	}
	n := 0
	for _, img := range s.Images {
		if img.PublicID == s.Primary {
			n++
		}
	}
	return n == 1
}

// NewVariantImages returns an empty collection for every known variant.
func NewVariantImages() map[Variant]VariantImageSet {
	m := make(map[Variant]VariantImageSet, len(Variants))
	for _, v := range Variants {
		m[v] = VariantImageSet{}
	}
	return m
}

// CloneVariantImages deep-copies a variants map so rollback state cannot be
// mutated through shared slices.
func CloneVariantImages(src map[Variant]VariantImageSet) map[Variant]VariantImageSet {
	out := make(map[Variant]VariantImageSet, len(src))
	for v, set := range src {
		images := make([]VariantImage, len(set.Images))
		copy(images, set.Images)
		out[v] = VariantImageSet{Primary: set.Primary, Images: images}
	}
	return out
}
