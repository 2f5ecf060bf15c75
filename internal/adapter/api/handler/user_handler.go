package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"profilehub/internal/domain/entity"
	"profilehub/internal/usecase"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
	"profilehub/pkg/response"
	"profilehub/pkg/utils"
)

const (
	maxGalleryImages  = 10
	maxDocuments      = 5
	maxProductFiles   = 2
	maxProductImages  = 5
	companyImageField = "company_image"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
	uploads     *FileHandler
}

func NewUserHandler(userUseCase *usecase.UserUseCase, uploads *FileHandler) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		uploads:     uploads,
	}
}

type createUserRequest struct {
	Mobile          string `json:"mobile" form:"mobile" validate:"required"`
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email" validate:"omitempty,email"`
	SecondaryMobile string `json:"secondaryMobile" form:"secondaryMobile"`
	Designation     string `json:"designation" form:"designation"`
	Bio             string `json:"bio" form:"bio"`
	Role            string `json:"role" form:"role" validate:"omitempty,oneof=user admin"`
}

type listUsersRequest struct {
	Name   string `query:"name"`
	Role   string `query:"role"`
	SortBy string `query:"sortBy" validate:"omitempty,sortby"`
	Limit  int    `query:"limit" validate:"omitempty,min=1"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
}

type updateUserRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	SecondaryMobile *string `json:"secondaryMobile"`
	Designation     *string `json:"designation"`
	Bio             *string `json:"bio"`
}

type socialMediaRequest struct {
	Facebook  string `json:"u_facebook"`
	Instagram string `json:"u_instagram"`
	Twitter   string `json:"u_twitter"`
	Youtube   string `json:"u_youtube"`
	Linkedin  string `json:"u_linkedin"`
}

type companyRequest struct {
	Name             *string `json:"company_name"`
	Mobile           *string `json:"company_mobile"`
	Email            *string `json:"company_email" validate:"omitempty,email"`
	Description      *string `json:"company_desc"`
	Website          *string `json:"company_website" validate:"omitempty,url"`
	Address          *string `json:"company_address"`
	LinkedinProfile  *string `json:"company_Linkedin_Profile" validate:"omitempty,url"`
	GoogleReviewLink *string `json:"google_review_link" validate:"omitempty,url"`
	PaymentLinkUPI   *string `json:"payment_link_upi"`
	Facebook         *string `json:"facebook" validate:"omitempty,url"`
	Instagram        *string `json:"instagram" validate:"omitempty,url"`
	Twitter          *string `json:"twitter" validate:"omitempty,url"`
	Youtube          *string `json:"youtube" validate:"omitempty,url"`
	Linkedin         *string `json:"linkedin" validate:"omitempty,url"`
}

func (r companyRequest) patch() entity.CompanyPatch {
	return entity.CompanyPatch{
		Name:             r.Name,
		Mobile:           r.Mobile,
		Email:            r.Email,
		Description:      r.Description,
		Website:          r.Website,
		Address:          r.Address,
		LinkedinProfile:  r.LinkedinProfile,
		GoogleReviewLink: r.GoogleReviewLink,
		PaymentLinkUPI:   r.PaymentLinkUPI,
		Facebook:         r.Facebook,
		Instagram:        r.Instagram,
		Twitter:          r.Twitter,
		Youtube:          r.Youtube,
		Linkedin:         r.Linkedin,
	}
}

type officeTimingRequest struct {
	StartTime string `json:"start_time" form:"start_time" validate:"required"`
	EndTime   string `json:"end_time" form:"end_time" validate:"required"`
}

type deleteGalleryRequest struct {
	ImageNames []string `json:"imageNames" form:"imageNames" validate:"required,min=1,dive,required"`
}

type productRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// bind decodes the body into req and validates it. Multipart text fields
// are decoded by their json names so optional pointer fields stay nil when
// a field was not sent.
func bind(c echo.Context, req interface{}) error {
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return errors.BadRequest("Invalid multipart form", err)
		}
		values := make(map[string]string, len(form.Value))
		for k, v := range form.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return errors.BadRequest("Invalid form data", err)
		}
		if err := json.Unmarshal(raw, req); err != nil {
			return errors.BadRequest("Invalid form data", err)
		}
	} else if err := c.Bind(req); err != nil {
		return err
	}

	return c.Validate(req)
}

// writeContext carries an If-Match version into the use case.
func writeContext(c echo.Context) (context.Context, error) {
	ctx := c.Request().Context()
	raw := strings.TrimSpace(c.Request().Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return ctx, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.BadRequest("If-Match must be a user version", err)
	}
	return usecase.WithExpectedVersion(ctx, v), nil
}

func userResult(c echo.Context, message string, user *entity.User) error {
	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatInt(user.Version, 10)))
	return response.Success(c, message, user)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.Create(c.Request().Context(), usecase.CreateUserInput{
		Mobile:          req.Mobile,
		Name:            req.Name,
		Email:           req.Email,
		SecondaryMobile: req.SecondaryMobile,
		Designation:     req.Designation,
		Bio:             req.Bio,
		Role:            req.Role,
	})
	if err != nil {
		return response.Error(c, err)
	}

	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatInt(user.Version, 10)))
	return response.Created(c, "User created successfully", user)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	var req listUsersRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	sort, err := utils.ParseSortBy(req.SortBy)
	if err != nil {
		return response.Error(c, errors.BadRequest(err.Error(), err))
	}

	result, err := h.userUseCase.List(c.Request().Context(), usecase.ListQuery{
		Name:  req.Name,
		Role:  req.Role,
		Sort:  sort,
		Limit: req.Limit,
		Page:  req.Page,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, result.Results, result.TotalResults, result.Page, result.Limit, result.TotalPages)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userUseCase.GetUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	if user == nil {
		return response.Error(c, errors.NotFound("User", nil))
	}

	return userResult(c, "User's Profile Details GET Successfully...", user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	return h.updateFields(c, entity.ImageField, "User's Profile Details UPDATE Successfully...")
}

func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateFields(c, entity.CoverImageField, "User's Profile Cover UPDATE Successfully...")
}

func (h *UserHandler) updateFields(c echo.Context, field, message string) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	file, err := h.uploads.StageSingle(c, field)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateFields(ctx, c.Param("userId"), usecase.UserFields{
		Name:            req.Name,
		Email:           req.Email,
		SecondaryMobile: req.SecondaryMobile,
		Designation:     req.Designation,
		Bio:             req.Bio,
	}, file, field)
	if err != nil {
		if file != nil {
			h.uploads.Discard(ctx, *file)
		}
		return response.Error(c, err)
	}

	return userResult(c, message, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userUseCase.Delete(c.Request().Context(), c.Param("userId")); err != nil {
		return response.Error(c, err)
	}
	logger.Info("Deleted user %s", c.Param("userId"))
	return response.NoContent(c)
}

func (h *UserHandler) DeleteImage(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.userUseCase.ClearImage(ctx, c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "User's Profile Image DELETE Successfully...", user)
}

func (h *UserHandler) DeleteCoverImage(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.userUseCase.ClearCoverImage(ctx, c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "User's Profile Cover Image DELETE Successfully...", user)
}

func (h *UserHandler) SetSocialMedia(c echo.Context) error {
	var req socialMediaRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetSocialMedia(ctx, c.Param("userId"), entity.SocialMedia{
		Facebook:  req.Facebook,
		Instagram: req.Instagram,
		Twitter:   req.Twitter,
		Youtube:   req.Youtube,
		Linkedin:  req.Linkedin,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "Social Media Details updated successfully", user)
}

func (h *UserHandler) AddCompany(c echo.Context) error {
	var req companyRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	image, err := h.uploads.StageSingle(c, companyImageField)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.AddCompany(ctx, c.Param("userId"), req.patch(), image)
	if err != nil {
		if image != nil {
			h.uploads.Discard(ctx, *image)
		}
		return response.Error(c, err)
	}

	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatInt(user.Version, 10)))
	return response.Created(c, "Company Details Added successfully", user)
}

func (h *UserHandler) UpdateCompany(c echo.Context) error {
	var req companyRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	image, err := h.uploads.StageSingle(c, companyImageField)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateCompany(ctx, c.Param("userId"), c.Param("companyId"), req.patch(), image)
	if err != nil {
		if image != nil {
			h.uploads.Discard(ctx, *image)
		}
		return response.Error(c, err)
	}
	return userResult(c, "Company Detail updated successfully", user)
}

func (h *UserHandler) DeleteCompany(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.userUseCase.DeleteCompany(ctx, c.Param("userId"), c.Param("companyId"))
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "Company Detail deleted successfully", user)
}

// DeleteCompanyImage serves both /company/:userId (every company) and
// /company/:userId/:companyId/image (one company).
func (h *UserHandler) DeleteCompanyImage(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.userUseCase.DeleteCompanyImage(ctx, c.Param("userId"), c.Param("companyId"))
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "Company image deleted successfully", user)
}

func (h *UserHandler) SetOfficeTiming(c echo.Context) error {
	var req officeTimingRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetOfficeTiming(ctx, c.Param("userId"), req.StartTime, req.EndTime)
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "User's Office Timing added successfully", user)
}

func (h *UserHandler) GetOfficeTimings(c echo.Context) error {
	timings, err := h.userUseCase.GetOfficeTimings(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, "User's Office Timings Retrieved Successfully", timings)
}

func (h *UserHandler) UploadGalleryImages(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	images, err := h.uploads.StageMultiple(c, "images", maxGalleryImages)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.AppendGalleryImages(ctx, c.Param("userId"), images)
	if err != nil {
		h.uploads.Discard(ctx, images...)
		return response.Error(c, err)
	}
	return userResult(c, "Gallery Images uploaded successfully", user)
}

func (h *UserHandler) DeleteGalleryImages(c echo.Context) error {
	var req deleteGalleryRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.DeleteGalleryImages(ctx, c.Param("userId"), req.ImageNames)
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "Gallery Images deleted successfully", user)
}

func (h *UserHandler) UploadFiles(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	documents, err := h.uploads.StageMultiple(c, "documents", maxDocuments)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.AppendFiles(ctx, c.Param("userId"), documents)
	if err != nil {
		h.uploads.Discard(ctx, documents...)
		return response.Error(c, err)
	}
	return userResult(c, "Files uploaded successfully", user)
}

// stageProduct stages the product's files and images together so a failure
// in either leaves nothing behind.
func (h *UserHandler) stageProduct(c echo.Context) (usecase.ProductInput, error) {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return usecase.ProductInput{}, err
	}

	files, err := h.uploads.StageMultiple(c, "files", maxProductFiles)
	if err != nil {
		return usecase.ProductInput{}, err
	}
	images, err := h.uploads.StageMultiple(c, "images", maxProductImages)
	if err != nil {
		h.uploads.Discard(c.Request().Context(), files...)
		return usecase.ProductInput{}, err
	}

	return usecase.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Files:       files,
		Images:      images,
	}, nil
}

func (h *UserHandler) discardProduct(ctx context.Context, in usecase.ProductInput) {
	h.uploads.Discard(ctx, in.Files...)
	h.uploads.Discard(ctx, in.Images...)
}

func (h *UserHandler) AddProduct(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	input, err := h.stageProduct(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.AddProduct(ctx, c.Param("userId"), input)
	if err != nil {
		h.discardProduct(ctx, input)
		return response.Error(c, err)
	}

	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatInt(user.Version, 10)))
	return response.Created(c, "Product created successfully", user)
}

func (h *UserHandler) UpdateProduct(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}

	input, err := h.stageProduct(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProduct(ctx, c.Param("userId"), c.Param("productId"), input)
	if err != nil {
		h.discardProduct(ctx, input)
		return response.Error(c, err)
	}
	return userResult(c, "Product updated successfully", user)
}

func (h *UserHandler) DeleteProduct(c echo.Context) error {
	ctx, err := writeContext(c)
	if err != nil {
		return response.Error(c, err)
	}
	user, err := h.userUseCase.DeleteProduct(ctx, c.Param("userId"), c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return userResult(c, "Product deleted successfully", user)
}
