package invoice

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newRecord := func(id string) *Record {
		return &Record{
			ID:          id,
			Date:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Content:     "Itemized List\n10048 1 BUDWEISER BUD 2/12 CAN 28.95",
			Filename:    id + "_invoice.png",
			ContentType: "image/png",
			CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	Describe("SaveInvoice and GetInvoice", func() {
		It("round-trips a record", func() {
			record := newRecord("abc")
			Expect(db.SaveInvoice(record)).To(Succeed())

			got, err := db.GetInvoice("abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(record))
		})

		It("preserves the raw transcription byte for byte", func() {
			record := newRecord("abc")
			record.Content = "  weird\n\n whitespace \tkept  "
			Expect(db.SaveInvoice(record)).To(Succeed())

			got, err := db.GetInvoice("abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal(record.Content))
		})

		When("the record does not exist", func() {
			It("returns an error", func() {
				_, err := db.GetInvoice("missing")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("invoice not found"))
			})
		})
	})

	Describe("ListInvoices", func() {
		When("the database is empty", func() {
			It("returns an empty slice", func() {
				records, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(BeEmpty())
				Expect(records).NotTo(BeNil())
			})
		})

		When("records exist", func() {
			BeforeEach(func() {
				Expect(db.SaveInvoice(newRecord("a"))).To(Succeed())
				Expect(db.SaveInvoice(newRecord("b"))).To(Succeed())
			})

			It("returns all of them", func() {
				records, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
			})
		})
	})

	Describe("DeleteInvoice", func() {
		BeforeEach(func() {
			Expect(db.SaveInvoice(newRecord("abc"))).To(Succeed())
		})

		It("removes the record", func() {
			Expect(db.DeleteInvoice("abc")).To(Succeed())
			_, err := db.GetInvoice("abc")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("persistence across reopen", func() {
		It("keeps records after closing and reopening", func() {
			Expect(db.SaveInvoice(newRecord("abc"))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			reopened, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()
			db = nil

			got, err := reopened.GetInvoice("abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("abc"))
		})
	})
})
