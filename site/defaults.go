// SPDX-License-Identifier: EPL-2.0

package site

// Defaults returns the surveyed transects with their categories and
// anomaly regions. File sets are site-specific and come from configuration.
func Defaults() []Site {
	return []Site{
		{ID: "BR_AC_10", Category: Archaeological, Regions: []Region{{RowStart: 4, RowEnd: 9, ColStart: 6, ColEnd: 11}}},
		{ID: "BR_RO_05", Category: Archaeological, Regions: []Region{{RowStart: 10, RowEnd: 15, ColStart: 12, ColEnd: 17}}},
		{ID: "BR_PA_02", Category: Archaeological, Regions: []Region{{RowStart: 25, RowEnd: 30, ColStart: 8, ColEnd: 13}}},
		{ID: "BR_AC_07", Category: Archaeological, Regions: []Region{{RowStart: 5, RowEnd: 10, ColStart: 5, ColEnd: 10}}},
		{ID: "BR_AC_09", Category: Archaeological, Regions: []Region{{RowStart: 7, RowEnd: 12, ColStart: 7, ColEnd: 12}}},
		{ID: "BR_AM_04", Category: Jungle},
		{ID: "BR_PA_04", Category: Jungle},
		{ID: "BR_RO_03", Category: Jungle},
		{ID: "BR_MT_01", Category: Jungle},
		{ID: "BR_AM_03", Category: City},
	}
}
