package reporting

import "fmt"

// ReportTitle renders the export title band text.
func ReportTitle(fromYear, toYear int) string {
	if fromYear == toYear {
		return fmt.Sprintf("Service Total for Year %d", fromYear)
	}
	return fmt.Sprintf("Service Total from %d – %d", fromYear, toYear)
}

// ExportFilename renders the download name of a workbook export.
func ExportFilename(fromYear, toYear int, ext string) string {
	if fromYear == toYear {
		return fmt.Sprintf("Service_Total_%d.%s", fromYear, ext)
	}
	return fmt.Sprintf("Service_Total_%d-%d.%s", fromYear, toYear, ext)
}

// SheetName renders the worksheet name of an export.
func SheetName(fromYear, toYear int) string {
	if fromYear == toYear {
		return fmt.Sprintf("Total %d", fromYear)
	}
	return fmt.Sprintf("Total %d-%d", fromYear, toYear)
}
