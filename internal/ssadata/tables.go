// Package ssadata holds the historical Social Security constants the benefit
// formulas are keyed on: the national average wage index and annual COLAs.
package ssadata

import "sort"

// PIA formula bend points in dollars at the 1977 wage index. Later bend
// points scale with the wage index relative to BendPointBaseYear.
const (
	FirstBendPoint1977  = 180
	SecondBendPoint1977 = 1085
	BendPointBaseYear   = 1977
)

// Source looks up historical constants by year.
type Source interface {
	// WageIndex returns the national average wage index for year in cents.
	WageIndex(year int) (int64, bool)
	// COLA returns the cost-of-living adjustment announced in year, in
	// tenths of a percent (5.9% is 59).
	COLA(year int) (int, bool)
}

// Tables is an in-memory Source.
type Tables struct {
	wageIndex map[int]int64
	cola      map[int]int
	lastWage  int
}

// NewTables builds a Source from explicit maps.
func NewTables(wageIndex map[int]int64, cola map[int]int) *Tables {
	t := &Tables{wageIndex: wageIndex, cola: cola}
	for y := range wageIndex {
		if y > t.lastWage {
			t.lastWage = y
		}
	}
	return t
}

var defaultTables = NewTables(wageIndexCents, colaTenths)

// Default returns the published SSA tables compiled into the binary.
func Default() *Tables {
	return defaultTables
}

// WageIndex returns the wage index for year. Years after the last published
// index use the last published value, so projections stay in today's wages.
func (t *Tables) WageIndex(year int) (int64, bool) {
	if v, ok := t.wageIndex[year]; ok {
		return v, true
	}
	if year > t.lastWage && t.lastWage != 0 {
		return t.wageIndex[t.lastWage], true
	}
	return 0, false
}

// COLA returns the adjustment announced in year. Future years return 0, false.
func (t *Tables) COLA(year int) (int, bool) {
	v, ok := t.cola[year]
	return v, ok
}

// LatestWageIndexYear returns the last year with a published wage index.
func (t *Tables) LatestWageIndexYear() int {
	return t.lastWage
}

// COLAYears returns every year with a published COLA, ascending.
func (t *Tables) COLAYears() []int {
	years := make([]int, 0, len(t.cola))
	for y := range t.cola {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// National average wage index, cents.
var wageIndexCents = map[int]int64{
	1951: 279916, 1952: 297332, 1953: 313944, 1954: 315564, 1955: 330144,
	1956: 353236, 1957: 364172, 1958: 367380, 1959: 385580, 1960: 400712,
	1961: 408676, 1962: 429140, 1963: 439664, 1964: 457632, 1965: 465872,
	1966: 493836, 1967: 521344, 1968: 557176, 1969: 589376, 1970: 618624,
	1971: 649708, 1972: 713380, 1973: 758016, 1974: 803076, 1975: 863092,
	1976: 922648, 1977: 977944, 1978: 1055603, 1979: 1147946, 1980: 1251346,
	1981: 1377310, 1982: 1453134, 1983: 1523924, 1984: 1613507, 1985: 1682251,
	1986: 1732182, 1987: 1842651, 1988: 1933404, 1989: 2009955, 1990: 2102798,
	1991: 2181160, 1992: 2293542, 1993: 2313267, 1994: 2375353, 1995: 2470566,
	1996: 2591390, 1997: 2742600, 1998: 2886144, 1999: 3046984, 2000: 3215482,
	2001: 3292192, 2002: 3325209, 2003: 3406495, 2004: 3564855, 2005: 3695294,
	2006: 3865141, 2007: 4040548, 2008: 4133497, 2009: 4071161, 2010: 4167383,
	2011: 4297961, 2012: 4432167, 2013: 4488816, 2014: 4648152, 2015: 4809863,
	2016: 4864215, 2017: 5032189, 2018: 5214580, 2019: 5409999, 2020: 5562860,
	2021: 6057507, 2022: 6379513, 2023: 6662180,
}

// COLA announced each year (effective December, payable January), tenths of a percent.
var colaTenths = map[int]int{
	1975: 80, 1976: 64, 1977: 59, 1978: 65, 1979: 99,
	1980: 143, 1981: 112, 1982: 74, 1983: 35, 1984: 35,
	1985: 31, 1986: 13, 1987: 42, 1988: 40, 1989: 47,
	1990: 54, 1991: 37, 1992: 30, 1993: 26, 1994: 28,
	1995: 26, 1996: 29, 1997: 21, 1998: 13, 1999: 25,
	2000: 35, 2001: 26, 2002: 14, 2003: 21, 2004: 27,
	2005: 41, 2006: 33, 2007: 23, 2008: 58, 2009: 0,
	2010: 0, 2011: 36, 2012: 17, 2013: 15, 2014: 17,
	2015: 0, 2016: 3, 2017: 20, 2018: 28, 2019: 16,
	2020: 13, 2021: 59, 2022: 87, 2023: 32, 2024: 25,
}
