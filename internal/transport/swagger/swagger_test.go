package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-administration/internal/transport/swagger"
)

const specPath = "../../../api/openapi.yml"

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("is a valid OpenAPI 3 document", func() {
		doc, err := swagger.LoadSpec(context.Background(), specPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("HR Administration API"))
	})

	It("documents every served route", func() {
		doc, err := swagger.LoadSpec(context.Background(), specPath)
		Expect(err).NotTo(HaveOccurred())

		for _, path := range []string{
			"/auth/login",
			"/auth/refresh",
			"/auth/me",
			"/accounts",
			"/accounts/import",
			"/accounts/bulk-delete",
			"/accounts/{id}",
			"/accounts/{id}/password",
			"/accounts/{id}/groups",
			"/accounts/{id}/permissions",
			"/accounts/{id}/purge",
			"/accounts/{id}/audit",
			"/audit",
			"/candidates",
			"/candidates/validate",
			"/candidates/{id}",
			"/health",
			"/ping",
		} {
			Expect(doc.Paths.Value(path)).NotTo(BeNil(), path)
		}
	})

	It("reports a missing file", func() {
		_, err := swagger.LoadSpec(context.Background(), "does-not-exist.yml")
		Expect(err).To(HaveOccurred())
	})

	It("serves the raw document", func() {
		w := httptest.NewRecorder()
		swagger.SpecHandler(specPath).ServeHTTP(w, httptest.NewRequest(http.MethodGet, swagger.SpecRoute, nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})
})
