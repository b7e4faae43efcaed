package user

import (
	"context"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a ServiceInterface that sends password reset emails synchronously.
func NewServiceMock(db core.DB, repo Repository, mailSvc core.EmailService) ServiceInterface {
	return &serviceMock{
		service: service{
			db:      db,
			repo:    repo,
			mailSvc: mailSvc,
			conf:    core.Conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
