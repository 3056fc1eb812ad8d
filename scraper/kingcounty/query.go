package kingcounty

import "net/url"

// searchParams is the default search form. Only these keys may be overridden.
var searchParams = map[string]string{
	"Output":                     "W",
	"Business_Name":              "",
	"Business_Address":           "",
	"Longitude":                  "",
	"Latitude":                   "",
	"City":                       "Seattle",
	"Zip_Code":                   "",
	"Inspection_Type":            "All",
	"Inspection_Start":           "",
	"Inspection_End":             "",
	"Inspection_Closed_Business": "A",
	"Violation_Points":           "",
	"Violation_Red_Points":       "",
	"Violation_Descr":            "",
	"Fuzzy_Search":               "N",
	"Sort":                       "B",
}

// BuildQuery merges overrides into the default search form. Keys the form
// does not know are ignored.
func BuildQuery(overrides map[string]string) map[string]string {
	params := make(map[string]string, len(searchParams))
	for k, v := range searchParams {
		params[k] = v
	}
	for k, v := range overrides {
		if _, ok := params[k]; ok {
			params[k] = v
		}
	}
	return params
}

func encodeQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
