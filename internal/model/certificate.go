package model

// CertificateData 由进度记录推导，不单独存储
// swagger:model CertificateData
type CertificateData struct {
	CourseID       string `json:"courseId"`
	EmployeeName   string `json:"employeeName"`
	CourseName     string `json:"courseName"`
	CompletionDate string `json:"completionDate"`
}
