package entity

type Company struct {
	ID               string    `json:"companyId" firestore:"companyId" bson:"companyId"`
	Name             string    `json:"company_name,omitempty" firestore:"company_name,omitempty" bson:"company_name,omitempty"`
	Mobile           string    `json:"company_mobile,omitempty" firestore:"company_mobile,omitempty" bson:"company_mobile,omitempty"`
	Email            string    `json:"company_email,omitempty" firestore:"company_email,omitempty" bson:"company_email,omitempty"`
	Description      string    `json:"company_desc,omitempty" firestore:"company_desc,omitempty" bson:"company_desc,omitempty"`
	Image            []FileRef `json:"company_image" firestore:"company_image" bson:"company_image"`
	Website          string    `json:"company_website,omitempty" firestore:"company_website,omitempty" bson:"company_website,omitempty"`
	Address          string    `json:"company_address,omitempty" firestore:"company_address,omitempty" bson:"company_address,omitempty"`
	LinkedinProfile  string    `json:"company_Linkedin_Profile,omitempty" firestore:"company_Linkedin_Profile,omitempty" bson:"company_Linkedin_Profile,omitempty"`
	GoogleReviewLink string    `json:"google_review_link,omitempty" firestore:"google_review_link,omitempty" bson:"google_review_link,omitempty"`
	PaymentLinkUPI   string    `json:"payment_link_upi,omitempty" firestore:"payment_link_upi,omitempty" bson:"payment_link_upi,omitempty"`
	Facebook         string    `json:"facebook,omitempty" firestore:"facebook,omitempty" bson:"facebook,omitempty"`
	Instagram        string    `json:"instagram,omitempty" firestore:"instagram,omitempty" bson:"instagram,omitempty"`
	Twitter          string    `json:"twitter,omitempty" firestore:"twitter,omitempty" bson:"twitter,omitempty"`
	Youtube          string    `json:"youtube,omitempty" firestore:"youtube,omitempty" bson:"youtube,omitempty"`
	Linkedin         string    `json:"linkedin,omitempty" firestore:"linkedin,omitempty" bson:"linkedin,omitempty"`
}

// CompanyPatch carries the company fields a request supplied. Nil means
// "leave as is".
type CompanyPatch struct {
	Name             *string
	Mobile           *string
	Email            *string
	Description      *string
	Website          *string
	Address          *string
	LinkedinProfile  *string
	GoogleReviewLink *string
	PaymentLinkUPI   *string
	Facebook         *string
	Instagram        *string
	Twitter          *string
	Youtube          *string
	Linkedin         *string
}

// Apply merges the supplied fields onto c; company_image is handled separately.
func (c *Company) Apply(p CompanyPatch) {
	set(&c.Name, p.Name)
	set(&c.Mobile, p.Mobile)
	set(&c.Email, p.Email)
	set(&c.Description, p.Description)
	set(&c.Website, p.Website)
	set(&c.Address, p.Address)
	set(&c.LinkedinProfile, p.LinkedinProfile)
	set(&c.GoogleReviewLink, p.GoogleReviewLink)
	set(&c.PaymentLinkUPI, p.PaymentLinkUPI)
	set(&c.Facebook, p.Facebook)
	set(&c.Instagram, p.Instagram)
	set(&c.Twitter, p.Twitter)
	set(&c.Youtube, p.Youtube)
	set(&c.Linkedin, p.Linkedin)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
