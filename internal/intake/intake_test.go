package intake_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/Skufu/refractplan/internal/intake"
	"github.com/Skufu/refractplan/internal/model"
)

const patientsCSV = `PatientID,Sphere,Cylinder,K1_pre,K2_pre,Pachymetry_pre,BCVA_pre,Age
P001,-4,-1,43,44,540,1.0,28
P002,+5,0,43,44,520,0.8,45
P003,abc,0,43,44,520,0.8,45
P004,-14,0,45,46,,0.9,25
`

func xlsxFixture(sheet string, rows [][]any) []byte {
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.DeleteSheet("Sheet1")).To(Succeed())
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.SetSheetRow(sheet, cell, &row)).To(Succeed())
	}
	buf, err := f.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf.Bytes()
}

var _ = Describe("NormalizeKey", func() {
	DescribeTable("maps header spellings to canonical keys",
		func(raw, want string) {
			Expect(intake.NormalizeKey(raw)).To(Equal(want))
		},
		Entry("mixed-case CSV header", "Pachymetry_pre", intake.KeyPachymetryPre),
		Entry("patient id", "PatientID", intake.KeyPatientID),
		Entry("upper case", "BCVA_PRE", intake.KeyBCVAPre),
		Entry("spaces", " Optical Zone ", intake.KeyOpticalZone),
		Entry("short alias", "K1", intake.KeyK1Pre),
		Entry("byte order mark", "\ufeffPatientID", intake.KeyPatientID),
		Entry("unknown key", "Post-op K1", "post_op_k1"),
	)
})

var _ = Describe("ReadCSV", func() {
	It("parses every data row with canonical keys", func() {
		records, err := intake.ReadCSV(strings.NewReader(patientsCSV))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(4))
		Expect(records[0].Row).To(Equal(1))
		Expect(records[0].Values).To(HaveKeyWithValue(intake.KeyPatientID, "P001"))
		Expect(records[1].Values).To(HaveKeyWithValue(intake.KeySphere, "+5"))
	})

	It("rejects an empty file", func() {
		_, err := intake.ReadCSV(strings.NewReader(""))
		Expect(errors.Is(err, intake.ErrNoHeader)).To(BeTrue())
	})

	It("rejects only the row that cannot be parsed", func() {
		csv := "PatientID,Sphere,Cylinder,K1_pre,K2_pre,Pachymetry_pre,BCVA_pre,Age\n" +
			"P001,-4,-1,43,44,540,1.0,28\n" +
			"P0\"02,-4,-1,43,44,540,1.0,28\n" +
			"P003,-4,-1,43,44,540,1.0,28\n"
		records, err := intake.ReadCSV(strings.NewReader(csv))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))

		items := intake.Items(records)
		Expect(items[0].Err).NotTo(HaveOccurred())
		Expect(items[1].Row).To(Equal(2))
		Expect(items[1].Err).To(MatchError(ContainSubstring(`bare "`)))
		Expect(items[1].Err.Error()).To(HavePrefix("row 2:"))
		Expect(items[2].Err).NotTo(HaveOccurred())
		Expect(items[2].Input.PatientID).To(Equal("P003"))
	})

	It("rejects two columns naming the same field", func() {
		_, err := intake.ReadCSV(strings.NewReader("K1,K1_pre,Sphere\n43,99,-4\n"))
		Expect(errors.Is(err, intake.ErrDuplicateColumn)).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring(`"K1" and "K1_pre" both map to k1_pre`)))
	})

	It("fills short rows with empty values", func() {
		records, err := intake.ReadCSV(strings.NewReader("age,sphere\n30\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].Values).To(HaveKeyWithValue(intake.KeySphere, ""))
	})
})

var _ = Describe("Record.Decode", func() {
	var items []model.BatchItem

	BeforeEach(func() {
		records, err := intake.ReadCSV(strings.NewReader(patientsCSV))
		Expect(err).NotTo(HaveOccurred())
		items = intake.Items(records)
	})

	It("decodes well-formed rows", func() {
		Expect(items[0].Err).NotTo(HaveOccurred())
		in := items[0].Input
		Expect(in.PatientID).To(Equal("P001"))
		Expect(*in.Age).To(Equal(28))
		Expect(*in.Sphere).To(Equal(-4.0))
		Expect(*in.PachymetryPre).To(Equal(540.0))
		Expect(in.OpticalZone).To(BeNil())
	})

	It("accepts an explicit plus sign", func() {
		Expect(items[1].Err).NotTo(HaveOccurred())
		Expect(*items[1].Input.Sphere).To(Equal(5.0))
	})

	It("reports non-numeric values per row", func() {
		var verr *model.ValidationError
		Expect(errors.As(items[2].Err, &verr)).To(BeTrue())
		Expect(verr.Fields).To(ConsistOf(model.FieldError{Field: intake.KeySphere, Problem: `must be numeric, got "abc"`}))
		Expect(items[2].Input.PatientID).To(Equal("P003"))
	})

	It("reports missing required values", func() {
		var verr *model.ValidationError
		Expect(errors.As(items[3].Err, &verr)).To(BeTrue())
		Expect(verr.Fields).To(ConsistOf(model.FieldError{Field: intake.KeyPachymetryPre, Problem: "is required"}))
		Expect(items[3].Err.Error()).To(HavePrefix("row 4:"))
	})

	It("rejects fractional ages", func() {
		_, err := intake.NewRecord(1, map[string]string{
			"age": "28.5", "sphere": "-1", "cylinder": "0", "k1": "43", "k2": "44", "pachymetry": "540", "bcva": "1",
		}).Decode()
		Expect(err).To(MatchError(ContainSubstring("age must be a whole number")))
	})
})

var _ = Describe("numeric fields", func() {
	decode := func(field, value string) (model.CaseInput, error) {
		values := map[string]string{
			"age": "28", "sphere": "-1", "cylinder": "0", "k1": "43", "k2": "44", "pachymetry": "540", "bcva": "1",
		}
		values[field] = value
		return intake.NewRecord(1, values).Decode()
	}

	It("accepts a decimal comma", func() {
		in, err := decode("pachymetry", "540,5")
		Expect(err).NotTo(HaveOccurred())
		Expect(*in.PachymetryPre).To(Equal(540.5))
	})

	DescribeTable("rejects values that are not plain decimals",
		func(value string) {
			_, err := decode("pachymetry", value)
			Expect(err).To(MatchError(ContainSubstring(`pachymetry_pre must be numeric, got "` + value + `"`)))
		},
		Entry("thousands separator", "1,000"),
		Entry("two commas", "1,000,5"),
		Entry("comma and dot", "1,000.5"),
		Entry("not a number", "NaN"),
	)

	DescribeTable("bounds the age",
		func(value, problem string) {
			_, err := decode("age", value)
			Expect(err).To(MatchError(ContainSubstring("age " + problem)))
		},
		Entry("overflowing", "1e30", `must be between 0 and 150, got "1e30"`),
		Entry("negative", "-1", `must be between 0 and 150, got "-1"`),
		Entry("comma fraction", "28,5", `must be a whole number, got "28,5"`),
	)

	It("accepts a whole age written with a decimal comma", func() {
		in, err := decode("age", "28,0")
		Expect(err).NotTo(HaveOccurred())
		Expect(*in.Age).To(Equal(28))
	})
})

var _ = Describe("NewRecord", func() {
	It("rejects keys that normalize to the same field", func() {
		_, err := intake.NewRecord(4, map[string]string{"K1": "43", "k1_pre": "99"}).Decode()
		Expect(errors.Is(err, intake.ErrDuplicateColumn)).To(BeTrue())
		Expect(err).To(MatchError(HavePrefix("row 4:")))
	})
})

var _ = Describe("FromJSON", func() {
	It("decodes an object", func() {
		in, err := intake.FromJSON(1, []byte(`{"Age":28,"Sphere":-4,"Cylinder":-1,"K1":43,"K2":44,"Pachymetry":540,"BCVA":1.0}`)).Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(*in.Sphere).To(Equal(-4.0))
	})

	It("fails anything else on its own row", func() {
		_, err := intake.FromJSON(2, []byte(`5`)).Decode()
		Expect(errors.Is(err, intake.ErrNotAnObject)).To(BeTrue())
		Expect(err).To(MatchError("row 2: record is not a JSON object: 5"))
	})
})

var _ = Describe("FromMap", func() {
	It("accepts JSON numbers and mixed-case keys", func() {
		rec := intake.FromMap(3, map[string]any{
			"PatientID": "J-1", "Age": 41.0, "Sphere": -2.25, "Cylinder": nil,
			"K1_pre": 43.0, "K2_pre": 44.0, "Pachymetry_pre": 530.0, "BCVA_pre": "0.9",
		})
		in, err := rec.Decode()
		Expect(err).To(MatchError(ContainSubstring("cylinder is required")))
		Expect(*in.Sphere).To(Equal(-2.25))
		Expect(*in.BCVAPre).To(Equal(0.9))
		Expect(*in.Age).To(Equal(41))
	})
})

var _ = Describe("ReadXLSX", func() {
	rows := [][]any{
		{"PatientID", "Sphere", "Cylinder", "K1_pre", "K2_pre", "Pachymetry_pre", "BCVA_pre", "Age", "Optical_Zone"},
		{"X1", -3.5, -0.75, 43.25, 44, 545, 1, 33, 6.5},
		{},
		{"X2", 2, 0, 42, 43, 530, 0.9, 52, ""},
	}

	It("reads the first sheet by default", func() {
		records, err := intake.ReadXLSX(bytes.NewReader(xlsxFixture("Sheet1", rows)), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Values).To(HaveKeyWithValue(intake.KeyOpticalZone, "6.5"))
		Expect(records[1].Row).To(Equal(3))

		items := intake.Items(records)
		Expect(items[0].Err).NotTo(HaveOccurred())
		Expect(*items[0].Input.K1Pre).To(Equal(43.25))
		Expect(items[1].Err).NotTo(HaveOccurred())
		Expect(items[1].Input.OpticalZone).To(BeNil())
	})

	It("selects a named sheet", func() {
		content := xlsxFixture("Patients", rows)
		records, err := intake.ReadXLSX(bytes.NewReader(content), "Patients")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))

		_, err = intake.ReadXLSX(bytes.NewReader(content), "Missing")
		Expect(errors.Is(err, intake.ErrSheetNotFound)).To(BeTrue())
	})

	It("rejects bytes that are not a workbook", func() {
		_, err := intake.ReadXLSX(strings.NewReader("not a zip"), "")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Read", func() {
	It("dispatches on the file extension", func() {
		records, err := intake.Read("patients.CSV", strings.NewReader(patientsCSV), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(4))
	})

	It("rejects unknown extensions", func() {
		_, err := intake.Read("patients.txt", strings.NewReader(patientsCSV), "")
		Expect(errors.Is(err, intake.ErrUnsupportedFormat)).To(BeTrue())
	})
})
