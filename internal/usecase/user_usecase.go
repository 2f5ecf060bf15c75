package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"profilehub/internal/domain/entity"
	"profilehub/internal/domain/repository"
	"profilehub/pkg/errors"
	"profilehub/pkg/logger"
	"profilehub/pkg/utils"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	now      func() time.Time
	newID    func() string
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

type CreateUserInput struct {
	Mobile          string
	Name            string
	Email           string
	SecondaryMobile string
	Designation     string
	Bio             string
	Role            string
}

// UserFields is a partial update; nil fields are left untouched.
type UserFields struct {
	Name            *string
	Email           *string
	SecondaryMobile *string
	Designation     *string
	Bio             *string
}

type ProductInput struct {
	Title       string
	Description string
	Files       []entity.FileRef
	Images      []entity.FileRef
}

type ListQuery struct {
	Name  string
	Role  string
	Sort  []utils.SortField
	Limit int
	Page  int
}

type PagedResult struct {
	Results      []*entity.User
	Page         int
	Limit        int
	TotalPages   int
	TotalResults int64
}

type expectedVersionKey struct{}

// WithExpectedVersion makes the next mutation fail with VERSION_CONFLICT
// unless the stored user is still at version v.
func WithExpectedVersion(ctx context.Context, v int64) context.Context {
	return context.WithValue(ctx, expectedVersionKey{}, v)
}

func expectedVersionFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(expectedVersionKey{}).(int64)
	return v, ok
}

func (uc *UserUseCase) Create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	mobile := strings.TrimSpace(input.Mobile)

	existing, err := uc.userRepo.GetByMobile(ctx, mobile)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Failed to check mobile", err)
	}
	if existing != nil {
		return nil, errors.Conflict("Mobile already taken")
	}

	email := normalizeEmail(input.Email)
	secondary := strings.TrimSpace(input.SecondaryMobile)
	if err := uc.ensureAvailable(ctx, "", email, secondary); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = entity.DefaultRole
	}

	now := uc.now()
	user := &entity.User{
		ID:              uc.newID(),
		Name:            strings.TrimSpace(input.Name),
		Email:           email,
		Mobile:          mobile,
		SecondaryMobile: secondary,
		Designation:     input.Designation,
		Bio:             input.Bio,
		Role:            role,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	user.EnsureCollections()

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("Mobile, email or secondary mobile already taken")
		}
		return nil, errors.Internal("Failed to create user", err)
	}

	logger.Debug("Created user %s", user.ID)
	return user, nil
}

func (uc *UserUseCase) List(ctx context.Context, q ListQuery) (*PagedResult, error) {
	paging := utils.NewPaginationParams(q.Page, q.Limit)

	sort := q.Sort
	if len(sort) == 0 {
		sort = []utils.SortField{{Field: "createdAt"}}
	}

	users, total, err := uc.userRepo.List(ctx,
		repository.UserFilter{Name: q.Name, Role: q.Role},
		repository.ListOptions{Sort: sort, Limit: paging.PageSize, Offset: paging.Offset},
	)
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}

	for _, u := range users {
		u.EnsureCollections()
	}
	if users == nil {
		users = []*entity.User{}
	}

	return &PagedResult{
		Results:      users,
		Page:         paging.Page,
		Limit:        paging.PageSize,
		TotalPages:   utils.TotalPages(total, paging.PageSize),
		TotalResults: total,
	}, nil
}

// GetUser returns nil, nil when no user has id.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	user.EnsureCollections()
	return user, nil
}

// GetUserByMobile returns nil, nil when no user has mobile.
func (uc *UserUseCase) GetUserByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	user, err := uc.userRepo.GetByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	user.EnsureCollections()
	return user, nil
}

// UpdateFields merges fields onto the user and, when newFile is set, appends
// it to the image or coverImage collection named by target.
func (uc *UserUseCase) UpdateFields(ctx context.Context, id string, fields UserFields, newFile *entity.FileRef, target string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		var email, secondary string
		if fields.Email != nil {
			email = normalizeEmail(*fields.Email)
		}
		if fields.SecondaryMobile != nil {
			secondary = strings.TrimSpace(*fields.SecondaryMobile)
		}
		if err := uc.ensureAvailable(ctx, u.ID, email, secondary); err != nil {
			return err
		}

		if fields.Name != nil {
			u.Name = strings.TrimSpace(*fields.Name)
		}
		if fields.Email != nil {
			u.Email = email
		}
		if fields.SecondaryMobile != nil {
			u.SecondaryMobile = secondary
		}
		if fields.Designation != nil {
			u.Designation = *fields.Designation
		}
		if fields.Bio != nil {
			u.Bio = *fields.Bio
		}
		if newFile != nil {
			u.AppendImage(target, *newFile)
		}
		return nil
	})
}

func (uc *UserUseCase) SetSocialMedia(ctx context.Context, id string, value entity.SocialMedia) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		sm := value
		u.SocialMedia = &sm
		return nil
	})
}

func (uc *UserUseCase) AddCompany(ctx context.Context, id string, fields entity.CompanyPatch, image *entity.FileRef) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		company := entity.Company{
			ID:    uc.newID(),
			Image: []entity.FileRef{},
		}
		company.Apply(fields)
		if image != nil {
			company.Image = append(company.Image, *image)
		}
		u.CompanyDetails = append(u.CompanyDetails, company)
		return nil
	})
}

func (uc *UserUseCase) UpdateCompany(ctx context.Context, id, companyID string, patch entity.CompanyPatch, image *entity.FileRef) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		i := u.CompanyIndex(companyID)
		if i < 0 {
			return errors.SubResourceNotFound("Company detail")
		}
		company := &u.CompanyDetails[i]
		if image != nil {
			company.Image = append(company.Image, *image)
		}
		company.Apply(patch)
		return nil
	})
}

func (uc *UserUseCase) DeleteCompany(ctx context.Context, id, companyID string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		if !u.RemoveCompany(companyID) {
			return errors.SubResourceNotFound("Company detail")
		}
		return nil
	})
}

// DeleteCompanyImage clears company_image on the company with companyID, or
// on every company when companyID is empty.
func (uc *UserUseCase) DeleteCompanyImage(ctx context.Context, id, companyID string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		if companyID == "" {
			for i := range u.CompanyDetails {
				u.CompanyDetails[i].Image = []entity.FileRef{}
			}
			return nil
		}

		i := u.CompanyIndex(companyID)
		if i < 0 {
			return errors.SubResourceNotFound("Company detail")
		}
		u.CompanyDetails[i].Image = []entity.FileRef{}
		return nil
	})
}

// SetOfficeTiming replaces the whole week with the same hours on every day.
func (uc *UserUseCase) SetOfficeTiming(ctx context.Context, id, startTime, endTime string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		u.OfficeTime = entity.WeeklyOfficeTime(startTime, endTime)
		return nil
	})
}

func (uc *UserUseCase) GetOfficeTimings(ctx context.Context, id string) ([]entity.OfficeTiming, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.OfficeTime == nil {
		return []entity.OfficeTiming{}, nil
	}
	return user.OfficeTime, nil
}

func (uc *UserUseCase) AppendGalleryImages(ctx context.Context, id string, refs []entity.FileRef) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		u.AppendGalleryImages(refs, uc.now())
		return nil
	})
}

func (uc *UserUseCase) AppendFiles(ctx context.Context, id string, refs []entity.FileRef) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		u.AppendDocuments(refs, uc.now())
		return nil
	})
}

func (uc *UserUseCase) AddProduct(ctx context.Context, id string, input ProductInput) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		now := uc.now()
		u.Products = append(u.Products, entity.Product{
			ID:          uc.newID(),
			Title:       input.Title,
			Description: input.Description,
			Files:       copyRefs(input.Files),
			Images:      copyRefs(input.Images),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return nil
	})
}

// UpdateProduct replaces title, description, files and images wholesale.
func (uc *UserUseCase) UpdateProduct(ctx context.Context, id, productID string, input ProductInput) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		i := u.ProductIndex(productID)
		if i < 0 {
			return errors.SubResourceNotFound("Product")
		}
		p := &u.Products[i]
		p.Title = input.Title
		p.Description = input.Description
		p.Files = copyRefs(input.Files)
		p.Images = copyRefs(input.Images)
		p.UpdatedAt = uc.now()
		return nil
	})
}

func (uc *UserUseCase) DeleteProduct(ctx context.Context, id, productID string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		if !u.RemoveProduct(productID) {
			return errors.SubResourceNotFound("Product")
		}
		return nil
	})
}

func (uc *UserUseCase) ClearImage(ctx context.Context, id string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		u.ClearImage()
		return nil
	})
}

func (uc *UserUseCase) ClearCoverImage(ctx context.Context, id string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		u.ClearCoverImage()
		return nil
	})
}

// DeleteGalleryImages removes gallery images by file name.
func (uc *UserUseCase) DeleteGalleryImages(ctx context.Context, id string, names []string) (*entity.User, error) {
	return uc.mutate(ctx, id, func(u *entity.User) error {
		removed := u.RemoveGalleryImagesByName(names, uc.now())
		logger.Debug("Removed %d gallery images from user %s", removed, u.ID)
		return nil
	})
}

func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to delete user", err)
	}
	logger.Debug("Deleted user %s", id)
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return user, nil
}

// mutate is the single read-modify-write path: load, check the caller's
// expected version, apply change, write back guarded by the version read.
func (uc *UserUseCase) mutate(ctx context.Context, id string, change func(u *entity.User) error) (*entity.User, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if want, ok := expectedVersionFrom(ctx); ok && want != user.Version {
		return nil, errors.VersionConflict(repository.ErrVersionConflict)
	}

	user.EnsureCollections()
	if err := change(user); err != nil {
		return nil, err
	}

	read := user.Version
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user, read); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrNotFound):
			return nil, errors.NotFound("User", err)
		case stderrors.Is(err, repository.ErrVersionConflict):
			return nil, errors.VersionConflict(err)
		case stderrors.Is(err, repository.ErrDuplicate):
			return nil, errors.Conflict("Email or secondary mobile already taken")
		default:
			return nil, errors.Internal("Failed to update user", err)
		}
	}

	return user, nil
}

// ensureAvailable rejects an email or secondary mobile held by a user other than selfID.
func (uc *UserUseCase) ensureAvailable(ctx context.Context, selfID, email, secondaryMobile string) error {
	if email != "" {
		taken, err := uc.userRepo.IsTaken(ctx, "email", email, selfID)
		if err != nil {
			return errors.Internal("Failed to check email", err)
		}
		if taken {
			return errors.Conflict("Email already taken")
		}
	}
	if secondaryMobile != "" {
		taken, err := uc.userRepo.IsTaken(ctx, "secondaryMobile", secondaryMobile, selfID)
		if err != nil {
			return errors.Internal("Failed to check secondary mobile", err)
		}
		if taken {
			return errors.Conflict("Secondary mobile already taken")
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyRefs(refs []entity.FileRef) []entity.FileRef {
	out := make([]entity.FileRef, len(refs))
	copy(out, refs)
	return out
}
