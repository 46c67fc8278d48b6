package vacdm

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/plvacc/vdgs/internal/httpjson"
)

var (
	errNotObject      = errors.New("expected a JSON object")
	errFlightsNotList = errors.New(`"flights" is not a list`)
)

// Airport is one directory entry: an ICAO code and its VDGS endpoints in listed order.
type Airport struct {
	ICAO      string   `json:"icao"`
	Endpoints []string `json:"endpoints"`
}

// Directory keeps airports in the order the service listed them.
type Directory struct {
	Airports []Airport `json:"airports"`
}

// parseDirectory walks the body with an iterator instead of decoding into a map,
// which would lose the key order of "airports".
//
// A missing or non-object "airports" yields no airports. A non-list entry yields an
// airport without endpoints and non-string endpoints are dropped. A repeated ICAO code
// keeps its first position and takes the last value.
func parseDirectory(body []byte) (Directory, error) {
	it := httpjson.API.BorrowIterator(body)
	defer httpjson.API.ReturnIterator(it)

	if it.WhatIsNext() != jsoniter.ObjectValue {
		return Directory{}, errNotObject
	}

	var dir Directory
	it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field == "airports" {
			dir.Airports = readAirports(it)
		} else {
			it.Skip()
		}
		return true
	})

	if it.Error != nil && !errors.Is(it.Error, io.EOF) {
		return Directory{}, it.Error
	}

	return dir, nil
}

func readAirports(it *jsoniter.Iterator) []Airport {
	if it.WhatIsNext() != jsoniter.ObjectValue {
		it.Skip()
		return nil
	}

	airports := make([]Airport, 0)
	index := make(map[string]int)

	it.ReadObjectCB(func(it *jsoniter.Iterator, icao string) bool {
		endpoints := readEndpoints(it)
		if i, ok := index[icao]; ok {
			airports[i].Endpoints = endpoints
			return true
		}

		index[icao] = len(airports)
		airports = append(airports, Airport{ICAO: icao, Endpoints: endpoints})
		return true
	})

	return airports
}

func readEndpoints(it *jsoniter.Iterator) []string {
	if it.WhatIsNext() != jsoniter.ArrayValue {
		it.Skip()
		return nil
	}

	endpoints := make([]string, 0)
	it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() == jsoniter.StringValue {
			endpoints = append(endpoints, it.ReadString())
		} else {
			it.Skip()
		}
		return true
	})

	return endpoints
}

// countFlights counts the elements of "flights" without decoding them.
// A missing or null "flights" counts as zero.
func countFlights(body []byte) (int, error) {
	it := httpjson.API.BorrowIterator(body)
	defer httpjson.API.ReturnIterator(it)

	if it.WhatIsNext() != jsoniter.ObjectValue {
		return 0, errNotObject
	}

	var (
		n   int
		err error
	)
	it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field != "flights" {
			it.Skip()
			return true
		}

		n, err = 0, nil
		switch it.WhatIsNext() {
		case jsoniter.NilValue:
			it.Skip()
		case jsoniter.ArrayValue:
			it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
				it.Skip()
				n++
				return true
			})
		default:
			it.Skip()
			err = errFlightsNotList
		}
		return true
	})

	if it.Error != nil && !errors.Is(it.Error, io.EOF) {
		return 0, it.Error
	}
	if err != nil {
		return 0, err
	}

	return n, nil
}
