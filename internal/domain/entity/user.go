package entity

import (
	"path/filepath"
	"time"
)

const (
	ImageField      = "image"
	CoverImageField = "coverImage"
)

// FileRef points at a staged upload. It is never edited in place.
type FileRef struct {
	Path string `json:"path" firestore:"path" bson:"path"`
	Size int64  `json:"size" firestore:"size" bson:"size"`
}

// Name is the final path segment, the value clients use to address gallery images.
func (f FileRef) Name() string {
	return filepath.Base(f.Path)
}

type OfficeTiming struct {
	Day       string `json:"day" firestore:"day" bson:"day"`
	StartTime string `json:"start_time" firestore:"start_time" bson:"start_time"`
	EndTime   string `json:"end_time" firestore:"end_time" bson:"end_time"`
}

type SocialMedia struct {
	Facebook  string `json:"u_facebook,omitempty" firestore:"u_facebook,omitempty" bson:"u_facebook,omitempty"`
	Instagram string `json:"u_instagram,omitempty" firestore:"u_instagram,omitempty" bson:"u_instagram,omitempty"`
	Twitter   string `json:"u_twitter,omitempty" firestore:"u_twitter,omitempty" bson:"u_twitter,omitempty"`
	Youtube   string `json:"u_youtube,omitempty" firestore:"u_youtube,omitempty" bson:"u_youtube,omitempty"`
	Linkedin  string `json:"u_linkedin,omitempty" firestore:"u_linkedin,omitempty" bson:"u_linkedin,omitempty"`
}

type Gallery struct {
	Images    []FileRef `json:"images" firestore:"images" bson:"images"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

type Files struct {
	Documents []FileRef `json:"documents" firestore:"documents" bson:"documents"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

type User struct {
	ID              string `json:"id" firestore:"id" bson:"_id"`
	Name            string `json:"name,omitempty" firestore:"name" bson:"name"`
	Email           string `json:"email,omitempty" firestore:"email,omitempty" bson:"email,omitempty"`
	Mobile          string `json:"mobile" firestore:"mobile" bson:"mobile"`
	SecondaryMobile string `json:"secondaryMobile,omitempty" firestore:"secondaryMobile,omitempty" bson:"secondaryMobile,omitempty"`
	Designation     string `json:"designation,omitempty" firestore:"designation" bson:"designation"`
	Bio             string `json:"bio,omitempty" firestore:"bio" bson:"bio"`
	Role            string `json:"role" firestore:"role" bson:"role"`
	IsEmailVerified bool   `json:"isEmailVerified" firestore:"isEmailVerified" bson:"isEmailVerified"`

	Image      []FileRef `json:"image" firestore:"image" bson:"image"`
	CoverImage []FileRef `json:"coverImage" firestore:"coverImage" bson:"coverImage"`

	OfficeTime     []OfficeTiming `json:"officeTime" firestore:"officeTime" bson:"officeTime"`
	CompanyDetails []Company      `json:"companyDetails" firestore:"companyDetails" bson:"companyDetails"`
	SocialMedia    *SocialMedia   `json:"socialMedia,omitempty" firestore:"socialMedia,omitempty" bson:"socialMedia,omitempty"`
	Gallery        *Gallery       `json:"gallery,omitempty" firestore:"gallery,omitempty" bson:"gallery,omitempty"`
	Files          *Files         `json:"files,omitempty" firestore:"files,omitempty" bson:"files,omitempty"`
	Products       []Product      `json:"products" firestore:"products" bson:"products"`

	// Version increases by one on every persisted write.
	Version   int64     `json:"version" firestore:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// AppendImage adds ref to the image or coverImage collection. Unknown
// targets fall back to image.
func (u *User) AppendImage(target string, ref FileRef) {
	if target == CoverImageField {
		u.CoverImage = append(u.CoverImage, ref)
		return
	}
	u.Image = append(u.Image, ref)
}

func (u *User) ClearImage() {
	u.Image = []FileRef{}
}

func (u *User) ClearCoverImage() {
	u.CoverImage = []FileRef{}
}

// AppendGalleryImages creates the gallery on first use.
func (u *User) AppendGalleryImages(refs []FileRef, now time.Time) {
	if u.Gallery == nil {
		u.Gallery = &Gallery{Images: []FileRef{}, CreatedAt: now}
	}
	u.Gallery.Images = append(u.Gallery.Images, refs...)
	u.Gallery.UpdatedAt = now
}

// RemoveGalleryImagesByName drops every gallery image whose file name is in
// names and reports how many were removed. A missing gallery is a no-op.
func (u *User) RemoveGalleryImagesByName(names []string, now time.Time) int {
	if u.Gallery == nil || len(u.Gallery.Images) == 0 {
		return 0
	}

	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	kept := make([]FileRef, 0, len(u.Gallery.Images))
	for _, img := range u.Gallery.Images {
		if _, ok := drop[img.Name()]; ok {
			continue
		}
		kept = append(kept, img)
	}

	removed := len(u.Gallery.Images) - len(kept)
	u.Gallery.Images = kept
	u.Gallery.UpdatedAt = now
	return removed
}

// AppendDocuments creates the files holder on first use.
func (u *User) AppendDocuments(refs []FileRef, now time.Time) {
	if u.Files == nil {
		u.Files = &Files{Documents: []FileRef{}, CreatedAt: now}
	}
	u.Files.Documents = append(u.Files.Documents, refs...)
	u.Files.UpdatedAt = now
}

// CompanyIndex returns the position of the company with id, or -1.
func (u *User) CompanyIndex(id string) int {
	for i := range u.CompanyDetails {
		if u.CompanyDetails[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveCompany deletes the company with id and reports whether it existed.
func (u *User) RemoveCompany(id string) bool {
	i := u.CompanyIndex(id)
	if i < 0 {
		return false
	}
	u.CompanyDetails = append(u.CompanyDetails[:i], u.CompanyDetails[i+1:]...)
	return true
}

// ProductIndex returns the position of the product with id, or -1.
func (u *User) ProductIndex(id string) int {
	for i := range u.Products {
		if u.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveProduct deletes the product with id and reports whether it existed.
func (u *User) RemoveProduct(id string) bool {
	i := u.ProductIndex(id)
	if i < 0 {
		return false
	}
	u.Products = append(u.Products[:i], u.Products[i+1:]...)
	return true
}

// EnsureCollections replaces nil slices with empty ones so documents decoded
// from either store serialize as [] rather than null.
func (u *User) EnsureCollections() {
	if u.Image == nil {
		u.Image = []FileRef{}
	}
	if u.CoverImage == nil {
		u.CoverImage = []FileRef{}
	}
	if u.OfficeTime == nil {
		u.OfficeTime = []OfficeTiming{}
	}
	if u.CompanyDetails == nil {
		u.CompanyDetails = []Company{}
	}
	for i := range u.CompanyDetails {
		if u.CompanyDetails[i].Image == nil {
			u.CompanyDetails[i].Image = []FileRef{}
		}
	}
	if u.Products == nil {
		u.Products = []Product{}
	}
	for i := range u.Products {
		if u.Products[i].Files == nil {
			u.Products[i].Files = []FileRef{}
		}
		if u.Products[i].Images == nil {
			u.Products[i].Images = []FileRef{}
		}
	}
}
