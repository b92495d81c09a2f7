package console

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

// Attempts is the number of answers a prompt accepts before giving up.
const Attempts = 3

const separator = "*************************************************************"

// Separator prints the line framing every menu block.
func Separator(c Console) {
	c.Print(separator)
}

// Header prints a framed block title preceded by two blank lines.
func Header(c Console, title string) {
	c.Print()
	c.Print()
	Separator(c)
	c.Printf("*             %-46s*\n", title)
	Separator(c)
}

// AskNumeric asks for an integer in [min, max].
func AskNumeric(c Console, min, max int) (int, error) {
	var last error
	for attempt := 1; attempt <= Attempts; attempt++ {
		answer, err := c.Input(fmt.Sprintf("Donnez une valeur entre %d et %d : \n --> ", min, max))
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil {
			c.Print("FAIL : Vous devez rentrer une valeur numérique.")
			last = fmt.Errorf("%q n'est pas un nombre", answer)
			continue
		}
		if value < min || value > max {
			c.Printf("FAIL : Vous devez rentrer un nombre (entre %d et %d ).\n", min, max)
			last = fmt.Errorf("%d hors de [%d, %d]", value, min, max)
			continue
		}
		return value, nil
	}
	return 0, &downloader.ValidationError{Field: "valeur numérique", Attempts: Attempts, Err: last}
}

// AskVideoURL asks for the URL of one video.
func AskVideoURL(c Console) (string, error) {
	Header(c, "Url de votre vidéo Youtube")
	return askURL(c, "Indiquez l'url de la vidéo Youtube : \n --> ", "url de vidéo", downloader.ValidateURL)
}

// AskCollectionURL asks for a playlist or channel URL.
func AskCollectionURL(c Console, kind downloader.CollectionKind) (string, error) {
	noun := "playlist"
	if kind == downloader.KindChannel {
		noun = "chaîne"
	}
	Header(c, "Url de votre "+noun+" Youtube")
	return askURL(c, "Indiquez l'url de la "+noun+" Youtube : \n --> ", "url de "+string(kind), func(raw string) error {
		return downloader.ValidateCollectionURL(raw, kind)
	})
}

func askURL(c Console, prompt, field string, validate func(string) error) (string, error) {
	var last error
	for attempt := 1; attempt <= Attempts; attempt++ {
		answer, err := c.Input(prompt)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if err := validate(answer); err != nil {
			c.Print("ERREUR : " + err.Error())
			c.Print("le prefixe attendu est : https://www.youtube.com/")
			last = err
			continue
		}
		return answer, nil
	}
	return "", &downloader.ValidationError{Field: field, Attempts: Attempts, Err: last}
}

// AskSavePath asks for the destination directory. An empty answer selects
// fallback, a file selects its parent and a missing directory can be created.
func AskSavePath(c Console, fallback string) (string, error) {
	Header(c, "Sauvegarde fichier")
	var last error
	for attempt := 1; attempt <= Attempts; attempt++ {
		answer, err := c.Input("Indiquez l'endroit où vous voulez stocker le fichier : \n --> ")
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			answer = fallback
		}
		if answer == "" {
			c.Print("[ERREUR] : Vous devez indiquer un dossier")
			last = errors.New("chemin vide")
			continue
		}
		path, err := ResolvePath(answer)
		if err != nil {
			c.Print("[ERREUR] : " + err.Error())
			last = err
			continue
		}

		info, err := os.Stat(path)
		if err == nil {
			if !info.IsDir() {
				path = filepath.Dir(path)
			}
			return path, nil
		}
		if !os.IsNotExist(err) && !errors.Is(err, syscall.ENOTDIR) {
			c.Print("[ERREUR] : Le dossier n'est pas accessible")
			last = err
			continue
		}

		create, err := c.Input("Le dossier n'existe pas. Voulez-vous le créer ? [y/N] : ")
		if err != nil {
			return "", err
		}
		if !yes(create) {
			c.Print("[ERREUR] : Le dossier n'existe pas")
			last = fmt.Errorf("%s n'existe pas", path)
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			derr := &downloader.DirectoryCreationError{Path: path, Err: err}
			c.Print("[ERREUR] : Impossible de créer le dossier")
			if attempt == Attempts {
				return "", derr
			}
			last = derr
			continue
		}
		return path, nil
	}
	return "", &downloader.ValidationError{Field: "dossier de sauvegarde", Attempts: Attempts, Err: last}
}

// ResolvePath expands a leading ~ and makes path absolute.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("dossier personnel introuvable: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

// AskLinkFile asks for a text file holding one video URL per line.
func AskLinkFile(c Console) ([]string, error) {
	Header(c, "Fichier contenant les urls Youtube")
	var last error
	for attempt := 1; attempt <= Attempts; attempt++ {
		answer, err := c.Input("Indiquez le nom du fichier : \n --> ")
		if err != nil {
			return nil, err
		}
		c.Print()
		path, err := ResolvePath(strings.TrimSpace(answer))
		if err != nil {
			c.Print("[ERREUR] : " + err.Error())
			last = err
			continue
		}
		urls, rejected, err := ReadLinkFile(path)
		for _, line := range rejected {
			c.Print("[ERREUR] : le prefixe attendu est : https://www.youtube.com/")
			c.Printf("  le lien sur la ligne n° %d ne sera pas téléchargé\n", line)
		}
		if err != nil {
			c.Print("[ERREUR] : " + err.Error())
			last = err
			continue
		}
		return urls, nil
	}
	return nil, &downloader.ValidationError{Field: "fichier de liens", Attempts: Attempts, Err: last}
}

// ReadLinkFile returns the valid video URLs of path in file order, plus the
// 1-based numbers of the lines that were rejected. Blank lines are ignored.
// A file without any valid URL is an error.
func ReadLinkFile(path string) (urls []string, rejected []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("le fichier n'est pas accessible: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if downloader.ValidateURL(text) != nil {
			rejected = append(rejected, line)
			continue
		}
		urls = append(urls, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, rejected, fmt.Errorf("lecture de %s: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, rejected, errors.New("le fichier doit contenir au minimum une URL de vidéo youtube")
	}
	return urls, rejected, nil
}

// AskQuality lists the bitrates (audio) or resolutions (video) of streams and
// returns the 1-based index picked.
func AskQuality(c Console, audioOnly bool, streams []downloader.Stream) (int, error) {
	if len(streams) == 0 {
		return 0, &downloader.ValidationError{Field: "qualité", Err: errors.New("aucun flux disponible")}
	}
	if audioOnly {
		Header(c, "Choississez la qualité audio")
	} else {
		Header(c, "Choississez la résolution vidéo")
	}
	for i, s := range streams {
		c.Printf("      %d - %s \n", i+1, s.Label(audioOnly))
	}
	Separator(c)
	return AskNumeric(c, 1, len(streams))
}

// QualityChooser adapts AskQuality to the orchestrator's chooser.
func QualityChooser(c Console) downloader.ChoiceFunc {
	return func(audioOnly bool, streams []downloader.Stream) (int, error) {
		return AskQuality(c, audioOnly, streams)
	}
}

// PauseReturnToMenu waits for ENTER then counts seconds down before the menu
// comes back. A nil sleep uses time.Sleep.
func PauseReturnToMenu(c Console, seconds int, sleep func(time.Duration)) {
	if sleep == nil {
		sleep = time.Sleep
	}
	c.Print()
	// EOF just skips the wait
	_, _ = c.Input("Appuyer sur ENTREE pour revenir au menu d'accueil")
	c.Printf("Le menu d'accueil va revenir dans %d secondes ", seconds)
	for i := 0; i < seconds; i++ {
		sleep(time.Second)
		c.Printf(".")
	}
	c.Print()
	if cl, ok := c.(interface{ Clear() }); ok {
		cl.Clear()
	}
}
