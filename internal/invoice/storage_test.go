package invoice

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		basePath string
		storage  *LocalStorage
	)

	BeforeEach(func() {
		basePath = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(basePath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the storage directory", func() {
		info, err := os.Stat(basePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	Describe("Save and Get", func() {
		It("round-trips image data", func() {
			path, err := storage.Save("abc_invoice.png", []byte("image-bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("abc_invoice.png"))

			data, err := storage.Get(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("image-bytes")))
		})

		When("the image does not exist", func() {
			It("returns an error", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		It("removes a saved image", func() {
			path, err := storage.Save("abc_invoice.png", []byte("image-bytes"))
			Expect(err).NotTo(HaveOccurred())

			Expect(storage.Delete(path)).To(Succeed())
			_, err = storage.Get(path)
			Expect(err).To(HaveOccurred())
		})

		When("the image does not exist", func() {
			It("returns an error", func() {
				Expect(storage.Delete("missing.png")).NotTo(Succeed())
			})
		})
	})
})
