package validation_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("collects field errors in declaration order", func() {
		v := validation.NewValidator()
		v.Field("username", "").Required()
		v.Field("email", "a@yahoo.com").HasSuffix("@gmail.com", "Email must be from @gmail.com domain.", errors.ErrCodeInvalidEmailDomain)
		v.Field("joined", time.Now().Add(time.Hour)).NotFuture()

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		fields := err.FieldErrors()
		Expect(fields).To(HaveLen(3))
		Expect(fields[0].Field).To(Equal("username"))
		Expect(fields[1].Message).To(Equal("Email must be from @gmail.com domain."))
		Expect(fields[1].Code).To(Equal(string(errors.ErrCodeInvalidEmailDomain)))
		Expect(fields[2].Message).To(Equal("joined cannot be in the future"))
		Expect(err.Error()).To(Equal("username is required"))
	})

	It("counts runes for lengths", func() {
		v := validation.NewValidator()
		v.Field("first_name", "Ñandú").MinLength(5).MaxLength(5)
		Expect(v.Validate()).To(BeNil())
	})

	It("returns nil when every check passes", func() {
		v := validation.NewValidator()
		v.Field("email", "a@gmail.com").Required().HasSuffix("@gmail.com", "bad", errors.ErrCodeInvalidEmailDomain)
		Expect(v.Validate()).To(BeNil())
	})
})

var _ = Describe("Merge", func() {
	It("returns nil when every pass is nil", func() {
		Expect(validation.Merge(nil, nil)).To(BeNil())
	})

	It("keeps the order of the passes", func() {
		first := errors.NewValidationFieldError("email", "first", errors.ErrCodeInvalidEmailDomain)
		second := errors.NewValidationError("second", errors.ErrCodeValidationFailed)

		merged := validation.Merge(nil, first, second)
		Expect(merged.FieldErrors()).To(HaveLen(2))
		Expect(merged.Error()).To(Equal("first"))
		Expect(merged.FieldErrors()[1].Message).To(Equal("second"))
	})
})

var _ = Describe("Struct", func() {
	type payload struct {
		Name string `json:"name" validate:"required,max=3"`
		Kind string `json:"kind" validate:"oneof=a b"`
	}

	It("reports json field names with readable messages", func() {
		err := validation.Struct(payload{Name: "long", Kind: "c"})
		Expect(err).NotTo(BeNil())
		fields := err.FieldErrors()
		Expect(fields).To(HaveLen(2))
		Expect(fields[0].Field).To(Equal("name"))
		Expect(fields[0].Message).To(Equal("name must not exceed 3 characters"))
		Expect(fields[1].Message).To(Equal("kind must be one of: a, b"))
		Expect(fields[1].Code).To(Equal(string(errors.ErrCodeInvalidChoice)))
	})

	It("passes valid structs", func() {
		Expect(validation.Struct(payload{Name: "abc", Kind: "a"})).To(BeNil())
	})
})
