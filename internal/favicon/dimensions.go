// internal/favicon/dimensions.go
package favicon

import (
    "errors"
    "regexp"
    "sort"
    "strconv"
    "strings"
)

var (
    sizeInNameRe = regexp.MustCompile(`(?i)(\d{2,4})x(\d{2,4})`)
    sizeSepRe    = regexp.MustCompile(`[xX×]`)
    nonDigitRe   = regexp.MustCompile(`\D`)
)

var errMalformedSizes = errors.New("malformed sizes attribute")

// Dimensions works out the icon size from the sizes attribute, falling back
// to a WIDTHxHEIGHT pattern in the referenced file name. Unknown sizes are
// reported as 0x0. A sizes value that cannot be split into two numbers is an
// error and the tag should be skipped.
func Dimensions(t Attributed) (int, int, error) {
    sizes := strings.TrimSpace(t.Attr("sizes"))
    if sizes != "" && !strings.EqualFold(sizes, "any") {
        tokens := strings.Fields(sizes)
        sort.Sort(sort.Reverse(sort.StringSlice(tokens)))

        parts := sizeSepRe.Split(tokens[0], -1)
        if len(parts) != 2 {
            return 0, 0, errMalformedSizes
        }

        width, werr := digits(parts[0])
        height, herr := digits(parts[1])
        if werr != nil || herr != nil {
            return 0, 0, errMalformedSizes
        }
        return width, height, nil
    }

    m := sizeInNameRe.FindStringSubmatch(Reference(t))
    if m == nil {
        return 0, 0, nil
    }

    // The pattern guarantees both groups are digits.
    width, _ := digits(m[1])
    height, _ := digits(m[2])
    return width, height, nil
}

func digits(s string) (int, error) {
    return strconv.Atoi(nonDigitRe.ReplaceAllString(s, ""))
}
