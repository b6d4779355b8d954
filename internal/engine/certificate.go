package engine

import (
	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/model"
)

const CertificateDateLayout = "January 2, 2006"

// IssueCertificate 根据完成时间推导证书，每次查看都重新计算
func IssueCertificate(user *model.User, course *model.Course, record model.ProgressRecord) (model.CertificateData, error) {
	if !record.IsCompleted() {
		return model.CertificateData{}, apperr.ErrCertificateNotFound
	}
	return model.CertificateData{
		CourseID:       course.ID,
		EmployeeName:   user.Name,
		CourseName:     course.Title,
		CompletionDate: record.CompletionDate.Format(CertificateDateLayout),
	}, nil
}
