package riotapi

import (
	"context"
	"fmt"
	"lolstalker/internal/common"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Riot schema
const RIOT_SCHEMA = "https://%s.api.riotgames.com"

// Data dragon serves the static data of every patch
const DATA_DRAGON = "https://ddragon.leagueoflegends.com"

// Routes inside the riot API
const ROUTE_ACCOUNT_PUUID = "/riot/account/v1/accounts/by-riot-id/%s/%s"
const ROUTE_ACCOUNT_RIOT_ID = "/riot/account/v1/accounts/by-puuid/%s"
const ROUTE_SPECTATOR = "/lol/spectator/v5/active-games/by-summoner/%s"
const ROUTE_MATCH_IDS = "/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d"
const ROUTE_MATCH = "/lol/match/v5/matches/%s"

// Routes inside the data dragon.
// Versions and realm help decide the version of the files to download
const ROUTE_VERSIONS = "/api/versions.json"
const ROUTE_REALM = "/realms/%s.json"
const ROUTE_CHAMPIONS = "/cdn/%s/data/en_US/champion.json"
const ROUTE_SPELLS = "/cdn/%s/data/en_US/summoner.json"

// Limits of a development key
var DEV_KEY_RESTRICTIONS = []common.Restriction{
	{Requests: 20, Duration: time.Second},
	{Requests: 100, Duration: 2 * time.Minute},
}

// The spectator endpoint answers this when the player is not in a game
var ErrNotFound = common.ErrNotFound

type RiotApi struct {
	mu            sync.Mutex
	platformUrl   string
	regionUrl     string
	dataDragonUrl string
	realm         string
	champions     map[ChampionId]string
	spells        map[SpellId]string
	riotIds       map[Puuid]RiotId
	version       string
	proxy         *common.Proxy
}

type Option func(*RiotApi)

// Send platform requests (spectator) somewhere else, mostly for testing
func WithPlatformUrl(url string) Option {
	return func(riotapi *RiotApi) {
		riotapi.platformUrl = url
	}
}

// Send regional requests (account, match) somewhere else, mostly for testing
func WithRegionUrl(url string) Option {
	return func(riotapi *RiotApi) {
		riotapi.regionUrl = url
	}
}

func WithDataDragonUrl(url string) Option {
	return func(riotapi *RiotApi) {
		riotapi.dataDragonUrl = url
	}
}

func NewRiotApi(apiKey string, platform string, region string, realm string, timeout time.Duration, restrictions []common.Restriction, opts ...Option) *RiotApi {

	riotapi := &RiotApi{
		platformUrl:   fmt.Sprintf(RIOT_SCHEMA, platform),
		regionUrl:     fmt.Sprintf(RIOT_SCHEMA, region),
		dataDragonUrl: DATA_DRAGON,
		realm:         realm,
		champions:     map[ChampionId]string{},
		spells:        map[SpellId]string{},
		riotIds:       map[Puuid]RiotId{},
		proxy:         common.NewProxy(map[string]string{"X-Riot-Token": apiKey}, restrictions, timeout),
	}
	for _, opt := range opts {
		opt(riotapi)
	}

	return riotapi
}

func (riotapi *RiotApi) GetRiotId(ctx context.Context, puuid Puuid) (RiotId, error) {

	// Check cache
	riotapi.mu.Lock()
	riotid, ok := riotapi.riotIds[puuid]
	riotapi.mu.Unlock()
	if ok {
		return riotid, nil
	}
	log.Debug().Msg(fmt.Sprintf("Riot id for puuid %s is not in the cache", puuid))

	// Request
	url := riotapi.regionUrl + fmt.Sprintf(ROUTE_ACCOUNT_RIOT_ID, puuid)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return RiotId{}, fmt.Errorf("could not find riot id for puuid %s: %w", puuid, err)
	}

	// Decode
	riotid, err = UnmarshalRiotId(data)
	if err != nil {
		return RiotId{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Found riot id %s for puuid %s", &riotid, puuid))

	// Update cache
	riotapi.mu.Lock()
	riotapi.riotIds[puuid] = riotid
	riotapi.mu.Unlock()
	return riotid, nil
}

func (riotapi *RiotApi) GetPuuid(ctx context.Context, riotid RiotId) (Puuid, error) {

	// Check cache
	riotapi.mu.Lock()
	for key, value := range riotapi.riotIds {
		if value == riotid {
			riotapi.mu.Unlock()
			return key, nil
		}
	}
	riotapi.mu.Unlock()

	// Request
	requestUrl := riotapi.regionUrl + fmt.Sprintf(ROUTE_ACCOUNT_PUUID, url.PathEscape(riotid.GameName), url.PathEscape(riotid.TagLine))
	data, err := riotapi.request(ctx, requestUrl)
	if err != nil {
		return "", fmt.Errorf("could not find puuid for riot id %s: %w", &riotid, err)
	}

	// Decode
	puuid, err := UnmarshalPuuid(data)
	if err != nil {
		return "", err
	}

	// Update cache
	// Take care here because maybe I have an old riot id that I need to update
	riotapi.mu.Lock()
	if _, ok := riotapi.riotIds[puuid]; ok {
		log.Debug().Msg(fmt.Sprintf("Updating riot id %s for puuid %s", &riotid, puuid))
	} else {
		log.Debug().Msg(fmt.Sprintf("Found puuid %s for riot id %s", puuid, &riotid))
	}
	riotapi.riotIds[puuid] = riotid
	riotapi.mu.Unlock()

	return puuid, nil
}

// Get the game the player is currently playing.
// Returns ErrNotFound when the player is not in a game
func (riotapi *RiotApi) GetSpectator(ctx context.Context, puuid Puuid) (Spectator, error) {

	// Request
	url := riotapi.platformUrl + fmt.Sprintf(ROUTE_SPECTATOR, puuid)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return Spectator{}, err
	}

	// Decode
	spectator, err := UnmarshalSpectator(data)
	if err != nil {
		return Spectator{}, fmt.Errorf("spectator data for puuid %s is not correctly formatted: %w", puuid, err)
	}
	log.Debug().Msg(fmt.Sprintf("Puuid %s is playing game %d", puuid, spectator.GameId))

	return spectator, nil
}

// Get the ids of the latest matches of the player, most recent first
func (riotapi *RiotApi) GetMatchIds(ctx context.Context, puuid Puuid, start int, count int) ([]MatchId, error) {

	// Request
	url := riotapi.regionUrl + fmt.Sprintf(ROUTE_MATCH_IDS, puuid, start, count)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not find match ids for puuid %s: %w", puuid, err)
	}

	return UnmarshalMatchIds(data)
}

func (riotapi *RiotApi) GetMatch(ctx context.Context, matchId MatchId) (Match, error) {

	// Request
	url := riotapi.regionUrl + fmt.Sprintf(ROUTE_MATCH, matchId)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return Match{}, fmt.Errorf("could not find match %s: %w", matchId, err)
	}

	match, err := UnmarshalMatch(data)
	if err != nil {
		return Match{}, fmt.Errorf("match %s is not correctly formatted: %w", matchId, err)
	}
	return match, nil
}

func (riotapi *RiotApi) GetChampionName(ctx context.Context, championId ChampionId) (string, error) {

	riotapi.mu.Lock()
	empty := len(riotapi.champions) == 0
	riotapi.mu.Unlock()
	if empty {
		if err := riotapi.getChampionData(ctx); err != nil {
			return "", err
		}
	}

	riotapi.mu.Lock()
	championName, ok := riotapi.champions[championId]
	riotapi.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("could not find champion name for champion id %d", championId)
	}

	return championName, nil
}

func (riotapi *RiotApi) GetSpellName(ctx context.Context, spellId SpellId) (string, error) {

	riotapi.mu.Lock()
	empty := len(riotapi.spells) == 0
	riotapi.mu.Unlock()
	if empty {
		if err := riotapi.getSpellData(ctx); err != nil {
			return "", err
		}
	}

	riotapi.mu.Lock()
	spellName, ok := riotapi.spells[spellId]
	riotapi.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("could not find summoner spell name for spell id %d", spellId)
	}

	return spellName, nil
}

func (riotapi *RiotApi) getChampionData(ctx context.Context) error {

	version, err := riotapi.currentVersion(ctx)
	if err != nil {
		return err
	}

	// Request
	url := riotapi.dataDragonUrl + fmt.Sprintf(ROUTE_CHAMPIONS, version)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return fmt.Errorf("could not request champion data: %w", err)
	}

	// Extract
	champions, err := UnmarshalChampions(data)
	if err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d champions for version %s", len(champions), version))

	// Update cache
	riotapi.mu.Lock()
	riotapi.champions = champions
	riotapi.mu.Unlock()

	return nil
}

func (riotapi *RiotApi) getSpellData(ctx context.Context) error {

	version, err := riotapi.currentVersion(ctx)
	if err != nil {
		return err
	}

	// Request
	url := riotapi.dataDragonUrl + fmt.Sprintf(ROUTE_SPELLS, version)
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return fmt.Errorf("could not request summoner spell data: %w", err)
	}

	// Extract
	spells, err := UnmarshalSpells(data)
	if err != nil {
		return err
	}

	// Update cache
	riotapi.mu.Lock()
	riotapi.spells = spells
	riotapi.mu.Unlock()

	return nil
}

// Version of the data dragon in use, checking it if still unknown
func (riotapi *RiotApi) currentVersion(ctx context.Context) (string, error) {

	riotapi.mu.Lock()
	version := riotapi.version
	riotapi.mu.Unlock()
	if version != "" {
		return version, nil
	}

	if err := riotapi.checkPatchVersion(ctx); err != nil {
		return "", err
	}

	riotapi.mu.Lock()
	defer riotapi.mu.Unlock()
	return riotapi.version, nil
}

func (riotapi *RiotApi) request(ctx context.Context, url string) ([]byte, error) {

	// The spectator endpoint is polled all the time, so it can wait
	vital := !strings.Contains(url, fmt.Sprintf(ROUTE_SPECTATOR, ""))
	log.Debug().Msg(fmt.Sprintf("Requesting to url %s", url))
	return riotapi.proxy.Request(ctx, url, vital)
}

// Refresh the static data when the patch changes.
// The riot ids are also forgotten, since players can change them
func (riotapi *RiotApi) Housekeeping(ctx context.Context) {

	// Check patch version
	if err := riotapi.checkPatchVersion(ctx); err != nil {
		log.Error().Err(err).Msg("Could not check patch version")
		return
	}

	riotapi.mu.Lock()
	defer riotapi.mu.Unlock()
	log.Info().Msg(fmt.Sprintf("Current number of riot ids: %d", len(riotapi.riotIds)))
	riotapi.riotIds = make(map[Puuid]RiotId)
}

// Fetches the latest version of the data dragon available, and checks the version
// the realm is on.
// If the internal data is on an old version, it will force redownload when needed
func (riotapi *RiotApi) checkPatchVersion(ctx context.Context) error {

	// Check the versions.json file for the latest version
	url := riotapi.dataDragonUrl + ROUTE_VERSIONS
	data, err := riotapi.request(ctx, url)
	if err != nil {
		return fmt.Errorf("could not request file %s: %w", ROUTE_VERSIONS, err)
	}
	versions, err := UnmarshalVersions(data)
	if err != nil {
		return fmt.Errorf("%s file does not have the expected content: %w", ROUTE_VERSIONS, err)
	}
	latestVersion := versions[0]
	log.Info().Msg(fmt.Sprintf("Latest patch available in dd is %s", latestVersion))

	// Check which version the realm is sitting on
	url = riotapi.dataDragonUrl + fmt.Sprintf(ROUTE_REALM, riotapi.realm)
	data, err = riotapi.request(ctx, url)
	if err != nil {
		return fmt.Errorf("could not request realm %s: %w", riotapi.realm, err)
	}
	realmVersion, err := UnmarshalRealmVersion(data)
	if err != nil {
		return fmt.Errorf("realm %s file does not have the expected content: %w", riotapi.realm, err)
	}
	log.Info().Msg(fmt.Sprintf("Realm patch version for %s is %s", riotapi.realm, realmVersion))

	// The realm version should at least exist among the overall versions
	if !slices.Contains(versions, realmVersion) {
		return fmt.Errorf("realm version %s was not found among the dd versions", realmVersion)
	}

	if realmVersion == latestVersion {
		log.Info().Msg("Realm is on the latest version")
	} else {
		log.Info().Msg(fmt.Sprintf("Realm is on version %s while the latest version is %s", realmVersion, latestVersion))
	}

	// If the new version is different from the one currently in use,
	// invalidate my data to redownload when needed
	riotapi.mu.Lock()
	defer riotapi.mu.Unlock()
	if riotapi.version != realmVersion {
		log.Info().Msg(fmt.Sprintf("Internal version (%s) is not in line with new version (%s)", riotapi.version, realmVersion))
		riotapi.version = realmVersion
		riotapi.champions = make(map[ChampionId]string)
		riotapi.spells = make(map[SpellId]string)
	} else {
		log.Info().Msg("Internal version is in line with the new version. Nothing to do")
	}

	return nil
}
