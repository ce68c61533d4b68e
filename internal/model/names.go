package model

// versionNames maps GPO bill version codes to their published names.
var versionNames = map[string]string{
	"ash":  "Additional Sponsors House",
	"ath":  "Agreed to House",
	"ats":  "Agreed to Senate",
	"cdh":  "Committee Discharged House",
	"cds":  "Committee Discharged Senate",
	"cph":  "Considered and Passed House",
	"cps":  "Considered and Passed Senate",
	"eah":  "Engrossed Amendment House",
	"eas":  "Engrossed Amendment Senate",
	"eh":   "Engrossed in House",
	"ehr":  "Engrossed in House-Reprint",
	"enr":  "Enrolled Bill",
	"es":   "Engrossed in Senate",
	"esr":  "Engrossed in Senate-Reprint",
	"fah":  "Failed Amendment House",
	"fps":  "Failed Passage Senate",
	"hdh":  "Held at Desk House",
	"hds":  "Held at Desk Senate",
	"ih":   "Introduced in House",
	"ihr":  "Introduced in House-Reprint",
	"iph":  "Indefinitely Postponed in House",
	"ips":  "Indefinitely Postponed in Senate",
	"is":   "Introduced in Senate",
	"isr":  "Introduced in Senate-Reprint",
	"lth":  "Laid on Table in House",
	"lts":  "Laid on Table in Senate",
	"oph":  "Ordered to be Printed House",
	"ops":  "Ordered to be Printed Senate",
	"pch":  "Placed on Calendar House",
	"pcs":  "Placed on Calendar Senate",
	"pp":   "Public Print",
	"rah":  "Referred with Amendments House",
	"ras":  "Referred with Amendments Senate",
	"rch":  "Reference Change House",
	"rcs":  "Reference Change Senate",
	"rdh":  "Received in House",
	"rds":  "Received in Senate",
	"re":   "Reprint of an Amendment",
	"reah": "Re-engrossed Amendment House",
	"renr": "Re-enrolled",
	"res":  "Re-engrossed Amendment Senate",
	"rfh":  "Referred in House",
	"rfs":  "Referred in Senate",
	"rh":   "Reported in House",
	"rhr":  "Reported in House-Reprint",
	"rih":  "Referral Instructions House",
	"ris":  "Referral Instructions Senate",
	"rs":   "Reported in Senate",
	"rth":  "Referred to Committee House",
	"rts":  "Referred to Committee Senate",
	"sas":  "Additional Sponsors Senate",
	"sc":   "Sponsor Change House",
	"s_p":  "Star Print",
}

// VersionName returns the human readable name for a version code, or the
// code itself when GPO has not published one.
func VersionName(code string) string {
	if name, ok := versionNames[code]; ok {
		return name
	}
	return code
}
