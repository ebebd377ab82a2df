package invoice

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// multipartUpload builds a multipart body with a single "image" part.
func multipartUpload(filename string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		scanner     *mockScanner
		storage     *mockStorage
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		scanner = newMockScanner()
		storage = newMockStorage()
		service = NewService(db, scanner, storage)
		auth = BasicAuth{}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleIndex", func() {
		It("serves the HTML interface", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Invoice OCR"))
		})
	})

	Describe("handleScanInvoice", func() {
		When("a valid image is uploaded", func() {
			It("returns the transcription and the extracted invoice", func() {
				body, contentType := multipartUpload("invoice.png", []byte("fake-image"))
				resp, err := http.Post(ghttpServer.URL()+"/api/ocr", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var scanned scanResponse
				Expect(json.NewDecoder(resp.Body).Decode(&scanned)).To(Succeed())
				Expect(scanned.OCRResult).To(Equal(scannedText))
				Expect(scanned.Record.Content).To(Equal(scannedText))
				Expect(scanned.Invoice.Items).To(HaveLen(2))
				Expect(scanned.Invoice.Totals.Subtotal).To(BeNumerically("~", 64.95, 1e-9))
			})

			It("persists the record", func() {
				body, contentType := multipartUpload("invoice.png", []byte("fake-image"))
				resp, err := http.Post(ghttpServer.URL()+"/api/ocr", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()

				Expect(db.records).To(HaveLen(1))
			})
		})

		When("no image part is present", func() {
			It("returns bad request with a JSON error", func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/ocr", writer.FormDataContentType(), body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["error"]).To(ContainSubstring("No image file uploaded"))
			})
		})

		When("scanning fails", func() {
			BeforeEach(func() {
				scanner.scanErr = errors.New("model unavailable")
			})

			It("returns bad request and persists nothing", func() {
				body, contentType := multipartUpload("invoice.png", []byte("fake-image"))
				resp, err := http.Post(ghttpServer.URL()+"/api/ocr", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(db.records).To(BeEmpty())
			})
		})
	})

	Describe("handleListInvoices", func() {
		When("no invoices exist", func() {
			It("returns an empty JSON array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/invoices")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(MatchJSON("[]"))
			})
		})

		When("invoices exist", func() {
			BeforeEach(func() {
				db.records["abc"] = &Record{ID: "abc", Content: scannedText}
			})

			It("returns them", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/invoices")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				var records []*Record
				Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
				Expect(records).To(HaveLen(1))
				Expect(records[0].ID).To(Equal("abc"))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("db closed")
			})

			It("returns an internal server error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/invoices")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("handleGetInvoice", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", Content: scannedText}
		})

		It("returns the record", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/invoices/abc")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var record Record
			Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
			Expect(record.Content).To(Equal(scannedText))
		})

		When("the record does not exist", func() {
			It("returns not found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/invoices/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleParseInvoice", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", Content: scannedText}
		})

		It("re-extracts the stored transcription", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/invoices/abc/parsed")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var parsed parseResponse
			Expect(json.NewDecoder(resp.Body).Decode(&parsed)).To(Succeed())
			Expect(parsed.Record.ID).To(Equal("abc"))
			Expect(parsed.Invoice.Items).To(HaveLen(2))
			Expect(parsed.Invoice.AccountInfo.BusinessName).To(Equal("JUMMA INC."))
		})
	})

	Describe("handleGetInvoiceImage", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", Filename: "abc_invoice.png", ContentType: "image/png"}
			storage.files["abc_invoice.png"] = []byte("image-bytes")
		})

		It("returns the stored image", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/invoices/abc/image")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(Equal([]byte("image-bytes")))
		})
	})

	Describe("handleDeleteInvoice", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", Filename: "abc_invoice.png"}
			storage.files["abc_invoice.png"] = []byte("image-bytes")
		})

		It("deletes the record and returns no content", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/invoices/abc", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.records).To(BeEmpty())
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
			server = NewServerWithMux(service, auth, http.NewServeMux())
			setupServer()
		})

		When("credentials are missing", func() {
			It("returns unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/invoices")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
			})
		})

		When("credentials are wrong", func() {
			It("returns unauthorized", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/invoices", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("credentials are correct", func() {
			It("allows the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/invoices", nil)
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("admin", "secret")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})

	Describe("static assets", func() {
		It("serves the stylesheet", func() {
			resp, err := http.Get(ghttpServer.URL() + "/static/app.css")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/css"))
		})

		It("serves the script", func() {
			resp, err := http.Get(ghttpServer.URL() + "/static/app.js")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("javascript"))
		})
	})
})
