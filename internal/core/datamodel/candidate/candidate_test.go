package candidate_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/core/datamodel/candidate"
)

func TestCandidateFields(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Candidate Fields Suite")
}

func validFields() candidate.Fields {
	return candidate.Fields{
		FirstName:      "Ayu",
		LastName:       "Lestari",
		Address:        "Jl. Merdeka 1, Bandung",
		NationalID:     "32730123456789",
		Email:          "person@gmail.com",
		PhoneNumber1:   "081234567890",
		GraduationDate: time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
		YearOfBirth:    time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var _ = Describe("Candidate Fields", func() {
	Describe("Clean", func() {
		It("passes a gmail address", func() {
			f := validFields()
			Expect(f.Clean()).To(Succeed())
		})

		It("rejects any other domain with the fixed message", func() {
			f := validFields()
			f.Email = "person@yahoo.com"

			err := f.Clean()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Email must be from @gmail.com domain."))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldErrors()).To(HaveLen(1))
			Expect(appErr.FieldErrors()[0].Field).To(Equal("email"))
			Expect(appErr.FieldErrors()[0].Code).To(Equal(string(internal.ErrCodeInvalidEmailDomain)))
		})

		It("reports the domain failure first when the schema also fails", func() {
			f := validFields()
			f.Email = "person@yahoo.com"
			f.NationalID = "123"

			err := f.Clean()
			Expect(err.Error()).To(Equal("Email must be from @gmail.com domain."))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.FieldErrors()).To(HaveLen(2))
			Expect(appErr.FieldErrors()[1].Field).To(Equal("national_id"))
		})

		It("applies the choice defaults", func() {
			f := validFields()
			Expect(f.Clean()).To(Succeed())
			Expect(f.Qualification).To(Equal(candidate.QualificationHighSchool))
			Expect(f.Gender).To(Equal(candidate.GenderMale))
			Expect(f.MaritalStatus).To(Equal(candidate.MaritalStatusSingle))
		})
	})

	Describe("ValidateSchema", func() {
		DescribeTable("national id length",
			func(id string, valid bool) {
				f := validFields()
				f.NationalID = id
				err := f.ValidateSchema()
				if valid {
					Expect(err).NotTo(HaveOccurred())
					return
				}
				Expect(err).To(HaveOccurred())
				appErr, _ := internal.IsAppError(err)
				Expect(appErr.FieldErrors()[0].Code).To(Equal(string(internal.ErrCodeInvalidNationalID)))
				Expect(appErr.FieldErrors()[0].Message).To(Equal("national_id must be exactly 14 characters"))
			},
			Entry("13 characters", "3273012345678", false),
			Entry("14 characters", "32730123456789", true),
			Entry("15 characters", "327301234567890", false),
		)

		It("does not apply the email domain rule", func() {
			f := validFields()
			f.Email = "person@yahoo.com"
			Expect(f.ValidateSchema()).To(Succeed())
		})

		It("rejects unknown choices and overlong values", func() {
			f := validFields()
			f.Gender = "other"
			f.FirstName = "A name that is definitely longer than thirty chars"
			f.Email = "not-an-email"

			err := f.ValidateSchema()
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())

			fields := map[string]string{}
			for _, fe := range appErr.FieldErrors() {
				fields[fe.Field] = fe.Code
			}
			Expect(fields).To(HaveKeyWithValue("gender", string(internal.ErrCodeInvalidChoice)))
			Expect(fields).To(HaveKey("first_name"))
			Expect(fields).To(HaveKey("email"))
		})

		It("requires the dates", func() {
			f := validFields()
			f.GraduationDate = time.Time{}
			err := f.ValidateSchema()
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldErrors()[0].Field).To(Equal("graduation_date"))
		})

		It("drops an empty second phone number", func() {
			f := validFields()
			empty := ""
			f.PhoneNumber2 = &empty
			Expect(f.ValidateSchema()).To(Succeed())
			Expect(f.PhoneNumber2).To(BeNil())
		})
	})

	It("renders its name and email", func() {
		f := validFields()
		Expect(f.String()).To(Equal("name is Ayu and email is person@gmail.com"))
	})
})
