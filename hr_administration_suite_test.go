package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHRAdministration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HRAdministration Suite")
}
