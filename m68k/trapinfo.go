// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

// TrapInfo names one classic toolbox or OS trap.
type TrapInfo struct {
	Name string
}

// osTrapNames maps 8-bit OS trap numbers to their symbolic names.
var osTrapNames = map[uint16]string{
	0x000: "_Open",
	0x001: "_Close",
	0x002: "_Read",
	0x003: "_Write",
	0x004: "_Control",
	0x005: "_Status",
	0x006: "_KillIO",
	0x007: "_GetVolInfo",
	0x008: "_Create",
	0x009: "_Delete",
	0x00A: "_OpenRF",
	0x00B: "_Rename",
	0x00C: "_GetFileInfo",
	0x00D: "_SetFileInfo",
	0x00E: "_UnmountVol",
	0x00F: "_MountVol",
	0x010: "_Allocate",
	0x011: "_GetEOF",
	0x012: "_SetEOF",
	0x013: "_FlushVol",
	0x014: "_GetVol",
	0x015: "_SetVol",
	0x016: "_InitQueue",
	0x017: "_Eject",
	0x018: "_GetFPos",
	0x019: "_InitZone",
	0x01A: "_GetZone",
	0x01B: "_SetZone",
	0x01C: "_FreeMem",
	0x01D: "_MaxMem",
	0x01E: "_NewPtr",
	0x01F: "_DisposPtr",
	0x020: "_SetPtrSize",
	0x021: "_GetPtrSize",
	0x022: "_NewHandle",
	0x023: "_DisposHandle",
	0x024: "_SetHandleSize",
	0x025: "_GetHandleSize",
	0x026: "_HandleZone",
	0x027: "_ReallocHandle",
	0x028: "_RecoverHandle",
	0x029: "_HLock",
	0x02A: "_HUnlock",
	0x02B: "_EmptyHandle",
	0x02C: "_InitApplZone",
	0x02D: "_SetApplLimit",
	0x02E: "_BlockMove",
	0x02F: "_PostEvent",
	0x030: "_OSEventAvail",
	0x031: "_GetOSEvent",
	0x032: "_FlushEvents",
	0x033: "_VInstall",
	0x034: "_VRemove",
	0x035: "_Offline",
	0x036: "_MoreMasters",
	0x038: "_WriteParam",
	0x039: "_ReadDateTime",
	0x03A: "_SetDateTime",
	0x03B: "_Delay",
	0x03C: "_CmpString",
	0x03D: "_DrvrInstall",
	0x03E: "_DrvrRemove",
	0x03F: "_InitUtil",
	0x040: "_ResrvMem",
	0x041: "_SetFilLock",
	0x042: "_RstFilLock",
	0x043: "_SetFilType",
	0x044: "_SetFPos",
	0x045: "_FlushFile",
	0x046: "_GetTrapAddress",
	0x047: "_SetTrapAddress",
	0x048: "_PtrZone",
	0x049: "_HPurge",
	0x04A: "_HNoPurge",
	0x04B: "_SetGrowZone",
	0x04C: "_CompactMem",
	0x04D: "_PurgeMem",
	0x04E: "_AddDrive",
	0x04F: "_RDrvrInstall",
	0x050: "_RelString",
	0x054: "_UprString",
	0x055: "_StripAddress",
	0x057: "_SetAppBase",
	0x05D: "_SwapMMUMode",
	0x060: "_HFSDispatch",
	0x061: "_MaxBlock",
	0x062: "_PurgeSpace",
	0x063: "_MaxApplZone",
	0x064: "_MoveHHi",
	0x065: "_StackSpace",
	0x066: "_NewEmptyHandle",
	0x067: "_HSetRBit",
	0x068: "_HClrRBit",
	0x069: "_HGetState",
	0x06A: "_HSetState",
	0x06E: "_SlotManager",
	0x06F: "_SlotVInstall",
	0x070: "_SlotVRemove",
	0x071: "_AttachVBL",
	0x072: "_DoVBLTask",
	0x075: "_SIntInstall",
	0x076: "_SIntRemove",
	0x077: "_CountADBs",
	0x078: "_GetIndADB",
	0x079: "_GetADBInfo",
	0x07A: "_SetADBInfo",
	0x07B: "_ADBReInit",
	0x07C: "_ADBOp",
	0x07D: "_GetDefaultStartup",
	0x07E: "_SetDefaultStartup",
	0x07F: "_InternalWait",
	0x080: "_GetVideoDefault",
	0x081: "_SetVideoDefault",
	0x082: "_DTInstall",
	0x083: "_SetOSDefault",
	0x084: "_GetOSDefault",
	0x090: "_SysEnvirons",
}

// toolboxTrapNames maps 10-bit Toolbox trap numbers (0x800-0xBFF) to
// their symbolic names.
var toolboxTrapNames = map[uint16]string{
	0x808: "_InitProcMenu",
	0x809: "_GetCVariant",
	0x80A: "_GetWVariant",
	0x80B: "_PopUpMenuSelect",
	0x80C: "_RGetResource",
	0x80D: "_Count1Resources",
	0x80E: "_Get1IxResource",
	0x80F: "_Get1IxType",
	0x810: "_Unique1ID",
	0x811: "_TESelView",
	0x812: "_TEPinScroll",
	0x813: "_TEAutoView",
	0x815: "_SCSIDispatch",
	0x816: "_Pack8",
	0x817: "_CopyMask",
	0x818: "_FixAtan2",
	0x81C: "_Count1Types",
	0x81F: "_Get1Resource",
	0x820: "_Get1NamedResource",
	0x821: "_MaxSizeRsrc",
	0x826: "_InsMenuItem",
	0x827: "_HideDItem",
	0x828: "_ShowDItem",
	0x82B: "_Pack9",
	0x82C: "_Pack10",
	0x82D: "_Pack11",
	0x82E: "_Pack12",
	0x82F: "_Pack13",
	0x830: "_Pack14",
	0x831: "_Pack15",
	0x834: "_SetFScaleDisable",
	0x835: "_FontMetrics",
	0x837: "_MeasureText",
	0x838: "_CalcMask",
	0x839: "_SeedFill",
	0x83A: "_ZoomWindow",
	0x83B: "_TrackBox",
	0x83C: "_TEGetOffset",
	0x83D: "_TEDispatch",
	0x83E: "_TEStyleNew",
	0x83F: "_Long2Fix",
	0x840: "_Fix2Long",
	0x841: "_Fix2Frac",
	0x842: "_Frac2Fix",
	0x843: "_Fix2X",
	0x844: "_X2Fix",
	0x845: "_Frac2X",
	0x846: "_X2Frac",
	0x847: "_FracCos",
	0x848: "_FracSin",
	0x849: "_FracSqrt",
	0x84A: "_FracMul",
	0x84B: "_FracDiv",
	0x84D: "_FixDiv",
	0x84E: "_GetItemCmd",
	0x84F: "_SetItemCmd",
	0x850: "_InitCursor",
	0x851: "_SetCursor",
	0x852: "_HideCursor",
	0x853: "_ShowCursor",
	0x855: "_ShieldCursor",
	0x856: "_ObscureCursor",
	0x858: "_BitAnd",
	0x859: "_BitXor",
	0x85A: "_BitNot",
	0x85B: "_BitOr",
	0x85C: "_BitShift",
	0x85D: "_BitTst",
	0x85E: "_BitSet",
	0x85F: "_BitClr",
	0x861: "_Random",
	0x862: "_ForeColor",
	0x863: "_BackColor",
	0x864: "_ColorBit",
	0x865: "_GetPixel",
	0x866: "_StuffHex",
	0x867: "_LongMul",
	0x868: "_FixMul",
	0x869: "_FixRatio",
	0x86A: "_HiWord",
	0x86B: "_LoWord",
	0x86C: "_FixRound",
	0x86D: "_InitPort",
	0x86E: "_InitGraf",
	0x86F: "_OpenPort",
	0x870: "_LocalToGlobal",
	0x871: "_GlobalToLocal",
	0x872: "_GrafDevice",
	0x873: "_SetPort",
	0x874: "_GetPort",
	0x875: "_SetPBits",
	0x876: "_PortSize",
	0x877: "_MovePortTo",
	0x878: "_SetOrigin",
	0x879: "_SetClip",
	0x87A: "_GetClip",
	0x87B: "_ClipRect",
	0x87C: "_BackPat",
	0x87D: "_ClosePort",
	0x87E: "_AddPt",
	0x87F: "_SubPt",
	0x880: "_SetPt",
	0x881: "_EqualPt",
	0x882: "_StdText",
	0x883: "_DrawChar",
	0x884: "_DrawString",
	0x885: "_DrawText",
	0x886: "_TextWidth",
	0x887: "_TextFont",
	0x888: "_TextFace",
	0x889: "_TextMode",
	0x88A: "_TextSize",
	0x88B: "_GetFontInfo",
	0x88C: "_StringWidth",
	0x88D: "_CharWidth",
	0x88E: "_SpaceExtra",
	0x890: "_StdLine",
	0x891: "_LineTo",
	0x892: "_Line",
	0x893: "_MoveTo",
	0x894: "_Move",
	0x895: "_Shutdown",
	0x896: "_HidePen",
	0x897: "_ShowPen",
	0x898: "_GetPenState",
	0x899: "_SetPenState",
	0x89A: "_GetPen",
	0x89B: "_PenSize",
	0x89C: "_PenMode",
	0x89D: "_PenPat",
	0x89E: "_PenNormal",
	0x8A0: "_StdRect",
	0x8A1: "_FrameRect",
	0x8A2: "_PaintRect",
	0x8A3: "_EraseRect",
	0x8A4: "_InverRect",
	0x8A5: "_FillRect",
	0x8A6: "_EqualRect",
	0x8A7: "_SetRect",
	0x8A8: "_OffsetRect",
	0x8A9: "_InsetRect",
	0x8AA: "_SectRect",
	0x8AB: "_UnionRect",
	0x8AC: "_Pt2Rect",
	0x8AD: "_PtInRect",
	0x8AE: "_EmptyRect",
	0x8AF: "_StdRRect",
	0x8B0: "_FrameRoundRect",
	0x8B1: "_PaintRoundRect",
	0x8B2: "_EraseRoundRect",
	0x8B3: "_InverRoundRect",
	0x8B4: "_FillRoundRect",
	0x8B5: "_ScriptUtil",
	0x8B6: "_StdOval",
	0x8B7: "_FrameOval",
	0x8B8: "_PaintOval",
	0x8B9: "_EraseOval",
	0x8BA: "_InvertOval",
	0x8BB: "_FillOval",
	0x8BC: "_SlopeFromAngle",
	0x8BD: "_StdArc",
	0x8BE: "_FrameArc",
	0x8BF: "_PaintArc",
	0x8C0: "_EraseArc",
	0x8C1: "_InvertArc",
	0x8C2: "_FillArc",
	0x8C3: "_PtToAngle",
	0x8C4: "_AngleFromSlope",
	0x8C5: "_StdPoly",
	0x8C6: "_FramePoly",
	0x8C7: "_PaintPoly",
	0x8C8: "_ErasePoly",
	0x8C9: "_InvertPoly",
	0x8CA: "_FillPoly",
	0x8CB: "_OpenPoly",
	0x8CC: "_ClosePgon",
	0x8CD: "_KillPoly",
	0x8CE: "_OffsetPoly",
	0x8CF: "_PackBits",
	0x8D0: "_UnpackBits",
	0x8D1: "_StdRgn",
	0x8D2: "_FrameRgn",
	0x8D3: "_PaintRgn",
	0x8D4: "_EraseRgn",
	0x8D5: "_InverRgn",
	0x8D6: "_FillRgn",
	0x8D8: "_NewRgn",
	0x8D9: "_DisposRgn",
	0x8DA: "_OpenRgn",
	0x8DB: "_CloseRgn",
	0x8DC: "_CopyRgn",
	0x8DD: "_SetEmptyRgn",
	0x8DE: "_SetRecRgn",
	0x8DF: "_RectRgn",
	0x8E0: "_OfsetRgn",
	0x8E1: "_InsetRgn",
	0x8E2: "_EmptyRgn",
	0x8E3: "_EqualRgn",
	0x8E4: "_SectRgn",
	0x8E5: "_UnionRgn",
	0x8E6: "_DiffRgn",
	0x8E7: "_XorRgn",
	0x8E8: "_PtInRgn",
	0x8E9: "_RectInRgn",
	0x8EA: "_SetStdProcs",
	0x8EB: "_StdBits",
	0x8EC: "_CopyBits",
	0x8ED: "_StdTxMeas",
	0x8EE: "_StdGetPic",
	0x8EF: "_ScrollRect",
	0x8F0: "_StdPutPic",
	0x8F1: "_StdComment",
	0x8F2: "_PicComment",
	0x8F3: "_OpenPicture",
	0x8F4: "_ClosePicture",
	0x8F5: "_KillPicture",
	0x8F6: "_DrawPicture",
	0x8F8: "_ScalePt",
	0x8F9: "_MapPt",
	0x8FA: "_MapRect",
	0x8FB: "_MapRgn",
	0x8FC: "_MapPoly",
	0x8FE: "_InitFonts",
	0x8FF: "_GetFName",
	0x900: "_GetFNum",
	0x901: "_FMSwapFont",
	0x902: "_RealFont",
	0x903: "_SetFontLock",
	0x904: "_DrawGrowIcon",
	0x905: "_DragGrayRgn",
	0x906: "_NewString",
	0x907: "_SetString",
	0x908: "_ShowHide",
	0x909: "_CalcVis",
	0x90A: "_CalcVBehind",
	0x90B: "_ClipAbove",
	0x90C: "_PaintOne",
	0x90D: "_PaintBehind",
	0x90E: "_SaveOld",
	0x90F: "_DrawNew",
	0x910: "_GetWMgrPort",
	0x911: "_CheckUpdate",
	0x912: "_InitWindows",
	0x913: "_NewWindow",
	0x914: "_DisposWindow",
	0x915: "_ShowWindow",
	0x916: "_HideWindow",
	0x917: "_GetWRefCon",
	0x918: "_SetWRefCon",
	0x919: "_GetWTitle",
	0x91A: "_SetWTitle",
	0x91B: "_MoveWindow",
	0x91C: "_HiliteWindow",
	0x91D: "_SizeWindow",
	0x91E: "_TrackGoAway",
	0x91F: "_SelectWindow",
	0x920: "_BringToFront",
	0x921: "_SendBehind",
	0x922: "_BeginUpdate",
	0x923: "_EndUpdate",
	0x924: "_FrontWindow",
	0x925: "_DragWindow",
	0x926: "_DragTheRgn",
	0x927: "_InvalRgn",
	0x928: "_InvalRect",
	0x929: "_ValidRgn",
	0x92A: "_ValidRect",
	0x92B: "_GrowWindow",
	0x92C: "_FindWindow",
	0x92D: "_CloseWindow",
	0x92E: "_SetWindowPic",
	0x92F: "_GetWindowPic",
	0x930: "_InitMenus",
	0x931: "_NewMenu",
	0x932: "_DisposMenu",
	0x933: "_AppendMenu",
	0x934: "_ClearMenuBar",
	0x935: "_InsertMenu",
	0x936: "_DeleteMenu",
	0x937: "_DrawMenuBar",
	0x938: "_HiliteMenu",
	0x939: "_EnableItem",
	0x93A: "_DisableItem",
	0x93B: "_GetMenuBar",
	0x93C: "_SetMenuBar",
	0x93D: "_MenuSelect",
	0x93E: "_MenuKey",
	0x93F: "_GetItmIcon",
	0x940: "_SetItmIcon",
	0x941: "_GetItmStyle",
	0x942: "_SetItmStyle",
	0x943: "_GetItmMark",
	0x944: "_SetItmMark",
	0x945: "_CheckItem",
	0x946: "_GetItem",
	0x947: "_SetItem",
	0x948: "_CalcMenuSize",
	0x949: "_GetMHandle",
	0x94A: "_SetMFlash",
	0x94B: "_PlotIcon",
	0x94C: "_FlashMenuBar",
	0x94D: "_AddResMenu",
	0x94E: "_PinRect",
	0x94F: "_DeltaPoint",
	0x950: "_CountMItems",
	0x951: "_InsertResMenu",
	0x952: "_DelMenuItem",
	0x953: "_UpdtControl",
	0x954: "_NewControl",
	0x955: "_DisposControl",
	0x956: "_KillControls",
	0x957: "_ShowControl",
	0x958: "_HideControl",
	0x959: "_MoveControl",
	0x95A: "_GetCRefCon",
	0x95B: "_SetCRefCon",
	0x95C: "_SizeControl",
	0x95D: "_HiliteControl",
	0x95E: "_GetCTitle",
	0x95F: "_SetCTitle",
	0x960: "_GetCtlValue",
	0x961: "_GetMinCtl",
	0x962: "_GetMaxCtl",
	0x963: "_SetCtlValue",
	0x964: "_SetMinCtl",
	0x965: "_SetMaxCtl",
	0x966: "_TestControl",
	0x967: "_DragControl",
	0x968: "_TrackControl",
	0x969: "_DrawControls",
	0x96A: "_GetCtlAction",
	0x96B: "_SetCtlAction",
	0x96C: "_FindControl",
	0x96D: "_Draw1Control",
	0x96E: "_Dequeue",
	0x96F: "_Enqueue",
	0x970: "_GetNextEvent",
	0x971: "_EventAvail",
	0x972: "_GetMouse",
	0x973: "_StillDown",
	0x974: "_Button",
	0x975: "_TickCount",
	0x976: "_GetKeys",
	0x977: "_WaitMouseUp",
	0x978: "_UpdtDialog",
	0x979: "_CouldDialog",
	0x97A: "_FreeDialog",
	0x97B: "_InitDialogs",
	0x97C: "_GetNewDialog",
	0x97D: "_NewDialog",
	0x97E: "_SelIText",
	0x97F: "_IsDialogEvent",
	0x980: "_DialogSelect",
	0x981: "_DrawDialog",
	0x982: "_CloseDialog",
	0x983: "_DisposDialog",
	0x984: "_FindDItem",
	0x985: "_Alert",
	0x986: "_StopAlert",
	0x987: "_NoteAlert",
	0x988: "_CautionAlert",
	0x989: "_CouldAlert",
	0x98A: "_FreeAlert",
	0x98B: "_ParamText",
	0x98C: "_ErrorSound",
	0x98D: "_GetDItem",
	0x98E: "_SetDItem",
	0x98F: "_SetIText",
	0x990: "_GetIText",
	0x991: "_ModalDialog",
	0x992: "_DetachResource",
	0x993: "_SetResPurge",
	0x994: "_CurResFile",
	0x995: "_InitResources",
	0x996: "_RsrcZoneInit",
	0x997: "_OpenResFile",
	0x998: "_UseResFile",
	0x999: "_UpdateResFile",
	0x99A: "_CloseResFile",
	0x99B: "_SetResLoad",
	0x99C: "_CountResources",
	0x99D: "_GetIndResource",
	0x99E: "_CountTypes",
	0x99F: "_GetIndType",
	0x9A0: "_GetResource",
	0x9A1: "_GetNamedResource",
	0x9A2: "_LoadResource",
	0x9A3: "_ReleaseResource",
	0x9A4: "_HomeResFile",
	0x9A5: "_SizeRsrc",
	0x9A6: "_GetResAttrs",
	0x9A7: "_SetResAttrs",
	0x9A8: "_GetResInfo",
	0x9A9: "_SetResInfo",
	0x9AA: "_ChangedResource",
	0x9AB: "_AddResource",
	0x9AC: "_AddReference",
	0x9AD: "_RmveResource",
	0x9AE: "_RmveReference",
	0x9AF: "_ResError",
	0x9B0: "_WriteResource",
	0x9B1: "_CreateResFile",
	0x9B2: "_SystemEvent",
	0x9B3: "_SystemClick",
	0x9B4: "_SystemTask",
	0x9B5: "_SystemMenu",
	0x9B6: "_OpenDeskAcc",
	0x9B7: "_CloseDeskAcc",
	0x9B8: "_GetPattern",
	0x9B9: "_GetCursor",
	0x9BA: "_GetString",
	0x9BB: "GetIcon",
	0x9BC: "_GetPicture",
	0x9BD: "_GetNewWindow",
	0x9BE: "_GetNewControl",
	0x9BF: "_GetRMenu",
	0x9C0: "_GetNewMBar",
	0x9C1: "_UniqueID",
	0x9C2: "_SysEdit",
	0x9C3: "_KeyTrans",
	0x9C4: "_OpenRFPerm",
	0x9C5: "_RsrcMapEntry",
	0x9C6: "_Secs2Date",
	0x9C7: "_Date2Sec",
	0x9C8: "_SysBeep",
	0x9C9: "_SysError",
	0x9CB: "_TEGetText",
	0x9CC: "_TEInit",
	0x9CD: "_TEDispose",
	0x9CE: "_TextBox",
	0x9CF: "_TESetText",
	0x9D0: "_TECalText",
	0x9D1: "_TESetSelect",
	0x9D2: "_TENew",
	0x9D3: "_TEUpdate",
	0x9D4: "_TEClick",
	0x9D5: "_TECopy",
	0x9D6: "_TECut",
	0x9D7: "_TEDelete",
	0x9D8: "_TEActivate",
	0x9D9: "_TEDeactivate",
	0x9DA: "_TEIdle",
	0x9DB: "_TEPaste",
	0x9DC: "_TEKey",
	0x9DD: "_TEScroll",
	0x9DE: "_TEInsert",
	0x9DF: "_TESetJust",
	0x9E0: "_Munger",
	0x9E1: "_HandToHand",
	0x9E2: "_PtrToXHand",
	0x9E3: "_PtrToHand",
	0x9E4: "_HandAndHand",
	0x9E5: "_InitPack",
	0x9E6: "_InitAllPacks",
	0x9E7: "_Pack0",
	0x9E8: "_Pack1",
	0x9E9: "_Pack2",
	0x9EA: "_Pack3",
	0x9EB: "_Pack4/_FP68K",
	0x9EC: "_Pack5/_Elems68K",
	0x9ED: "_Pack6",
	0x9EE: "_Pack7/_DecStr68K",
	0x9EF: "_PtrAndHand",
	0x9F0: "_LoadSeg",
	0x9F1: "_UnloadSeg",
	0x9F2: "_Launch",
	0x9F3: "_Chain",
	0x9F4: "_ExitToShell",
	0x9F5: "_GetAppParms",
	0x9F6: "_GetResFileAttrs",
	0x9F7: "_SetResFileAttrs",
	0x9F9: "_InfoScrap",
	0x9FA: "_UnlodeScrap",
	0x9FB: "_LodeScrap",
	0x9FC: "_ZeroScrap",
	0x9FD: "_GetScrap",
	0x9FE: "_PutScrap",
	0xA00: "_OpenCport",
	0xA01: "_InitCport",
	0xA03: "_NewPixMap",
	0xA04: "_DisposPixMap",
	0xA05: "_CopyPixMap",
	0xA06: "_SetCPortPix",
	0xA07: "_NewPixPat",
	0xA08: "_DisposPixPat",
	0xA09: "_CopyPixPat",
	0xA0A: "_PenPixPat",
	0xA0B: "_BackPixPat",
	0xA0C: "_GetPixPat",
	0xA0D: "_MakeRGBPat",
	0xA0E: "_FillCRect",
	0xA0F: "_FillCOval",
	0xA10: "_FillCRoundRect",
	0xA11: "_FillCArc",
	0xA12: "_FillCRgn",
	0xA13: "_FillCPoly",
	0xA14: "_RGBForeColor",
	0xA15: "_RGBBackColor",
	0xA16: "_SetCPixel",
	0xA17: "_GetCPixel",
	0xA18: "_GetCTable",
	0xA19: "_GetForeColor",
	0xA1A: "_GetBackColor",
	0xA1B: "_GetCCursor",
	0xA1C: "_SetCCursor",
	0xA1D: "_AllocCursor",
	0xA1E: "_GetCIcon",
	0xA1F: "_PlotCIcon",
	0xA21: "_OpColor",
	0xA22: "_HiliteColor",
	0xA23: "_CharExtra",
	0xA24: "_DisposCTable",
	0xA25: "_DisposCIcon",
	0xA26: "_DisposCCursor",
	0xA27: "_GetMaxDevice",
	0xA29: "_GetDeviceList",
	0xA2A: "_GetMainDevice",
	0xA2B: "_GetNextDevice",
	0xA2C: "_TestDeviceAttribute",
	0xA2D: "_SetDeviceAttribute",
	0xA2E: "_InitGDevice",
	0xA2F: "_NewGDevice",
	0xA30: "_DisposGDevice",
	0xA31: "_SetGDevice",
	0xA32: "_GetGDevice",
	0xA33: "_Color2Index",
	0xA34: "_Index2Color",
	0xA35: "_InvertColor",
	0xA36: "_RealColor",
	0xA37: "_GetSubTable",
	0xA39: "_MakeITable",
	0xA3A: "_AddSearch",
	0xA3B: "_AddComp",
	0xA3C: "_SetClientID",
	0xA3D: "_ProtectEntry",
	0xA3E: "_ReserveEntry",
	0xA3F: "_SetEntries",
	0xA40: "_QDError",
	0xA41: "_SetWinColor",
	0xA42: "_GetAuxWin",
	0xA43: "_SetCtlColor",
	0xA44: "_GetAuxCtl",
	0xA45: "_NewCWindow",
	0xA46: "_GetNewCWindow",
	0xA47: "_SetDeskCPat",
	0xA48: "_GetCWMgrPort",
	0xA49: "_SaveEntries",
	0xA4A: "_RestoreEntries",
	0xA4B: "_NewCDialog",
	0xA4C: "_DelSearch",
	0xA4D: "_DelComp",
	0xA4F: "_CalcCMask",
	0xA50: "_SeedCFill",
	0xA60: "_DelMCEntries",
	0xA61: "_GetMCInfo",
	0xA62: "_SetMCInfo",
	0xA63: "_DispMCEntries",
	0xA64: "_GetMCEntry",
	0xA65: "_SetMCEntries",
	0xA66: "_MenuChoice",
}

func packTrapID(trapNum uint16, sel uint32) uint32 {
	return uint32(trapNum)<<16 | sel
}

// packTrapNames maps (parent trap, selector) pairs in the PACK 0-7,
// HFSDispatch, SCSIDispatch, ScriptUtil, Shutdown, SlotManager and
// InternalWait families to subroutine names.
var packTrapNames = map[uint32]string{
	packTrapID(0x09E7, 0): "LActivate",
	packTrapID(0x09E7, 4): "LAddColumn",
	packTrapID(0x09E7, 8): "LAddRow",
	packTrapID(0x09E7, 12): "LAddToCell",
	packTrapID(0x09E7, 16): "LAutoScroll",
	packTrapID(0x09E7, 20): "LCellSize",
	packTrapID(0x09E7, 24): "LClick",
	packTrapID(0x09E7, 28): "LClrCell",
	packTrapID(0x09E7, 32): "LDelColumn",
	packTrapID(0x09E7, 36): "LDelRow",
	packTrapID(0x09E7, 40): "LDispose",
	packTrapID(0x09E7, 44): "LDoDraw",
	packTrapID(0x09E7, 48): "LDraw",
	packTrapID(0x09E7, 52): "LFind",
	packTrapID(0x09E7, 56): "LGetCell",
	packTrapID(0x09E7, 60): "LGetSelect",
	packTrapID(0x09E7, 64): "LLastClick",
	packTrapID(0x09E7, 68): "LNew",
	packTrapID(0x09E7, 72): "LNextCell",
	packTrapID(0x09E7, 76): "LRect",
	packTrapID(0x09E7, 80): "LScroll",
	packTrapID(0x09E7, 84): "LSearch",
	packTrapID(0x09E7, 88): "LSetCell",
	packTrapID(0x09E7, 92): "LSetSelect",
	packTrapID(0x09E7, 96): "LSize",
	packTrapID(0x09E7, 100): "LUpdate",
	packTrapID(0x09E9, 0): "DIBadMount",
	packTrapID(0x09E9, 2): "DILoad",
	packTrapID(0x09E9, 4): "DIUnload",
	packTrapID(0x09E9, 6): "DIFormat",
	packTrapID(0x09E9, 8): "DIVerify",
	packTrapID(0x09E9, 10): "DIZero",
	packTrapID(0x09EA, 1): "SFPutFile",
	packTrapID(0x09EA, 2): "SFGetFile",
	packTrapID(0x09EA, 3): "SFPPutFile",
	packTrapID(0x09EA, 4): "SFPGetFile",
	packTrapID(0x09EB, 0): "FOADD",
	packTrapID(0x09EB, 1): "FOSETENV",
	packTrapID(0x09EB, 2): "FOSUB",
	packTrapID(0x09EB, 3): "FOGETENV",
	packTrapID(0x09EB, 4): "FOMUL",
	packTrapID(0x09EB, 5): "FOSETHV",
	packTrapID(0x09EB, 6): "FODIV",
	packTrapID(0x09EB, 7): "FOGETHV",
	packTrapID(0x09EB, 8): "FOCMP",
	packTrapID(0x09EB, 9): "FOD2B",
	packTrapID(0x09EB, 10): "FOCPX",
	packTrapID(0x09EB, 11): "FOB2D",
	packTrapID(0x09EB, 12): "FOREM",
	packTrapID(0x09EB, 13): "FONEG",
	packTrapID(0x09EB, 14): "FOZ2X",
	packTrapID(0x09EB, 15): "FOABS",
	packTrapID(0x09EB, 16): "FOX2Z",
	packTrapID(0x09EB, 17): "FOCPYSGN",
	packTrapID(0x09EB, 18): "FOSQRT",
	packTrapID(0x09EB, 19): "FONEXT",
	packTrapID(0x09EB, 20): "FORTI",
	packTrapID(0x09EB, 21): "FOSETXCP",
	packTrapID(0x09EB, 22): "FOTTI",
	packTrapID(0x09EB, 23): "FOPROCENTRY",
	packTrapID(0x09EB, 24): "FOSCALB",
	packTrapID(0x09EB, 25): "FOPROCEXIT",
	packTrapID(0x09EB, 26): "FOLOGB",
	packTrapID(0x09EB, 27): "FOTESTXCP",
	packTrapID(0x09EB, 28): "FOCLASS",
	packTrapID(0x09EC, 0): "FOLNX",
	packTrapID(0x09EC, 2): "FOLOG2X",
	packTrapID(0x09EC, 4): "FOLN1X",
	packTrapID(0x09EC, 6): "FOLOG21X",
	packTrapID(0x09EC, 8): "FOEXPX",
	packTrapID(0x09EC, 10): "FOEXP2X",
	packTrapID(0x09EC, 12): "FOEXP1X",
	packTrapID(0x09EC, 14): "FOEXP21X",
	packTrapID(0x09EC, 24): "FOSINX",
	packTrapID(0x09EC, 26): "FOCOSX",
	packTrapID(0x09EC, 28): "FOTANX",
	packTrapID(0x09EC, 30): "FOATANX",
	packTrapID(0x09EC, 32): "FORANDX",
	packTrapID(0x09EC, 32784): "FOXPWRI",
	packTrapID(0x09EC, 32786): "FOXPWRY",
	packTrapID(0x09EC, 49172): "FOCOMPOUND",
	packTrapID(0x09EC, 49174): "FOANNUITY",
	packTrapID(0x09ED, 0): "IUDateString",
	packTrapID(0x09ED, 2): "IUTimeString",
	packTrapID(0x09ED, 4): "IUMetric",
	packTrapID(0x09ED, 6): "IUGetIntl",
	packTrapID(0x09ED, 8): "IUSetIntl",
	packTrapID(0x09ED, 10): "IUMagString",
	packTrapID(0x09ED, 12): "IUMagIDString",
	packTrapID(0x09ED, 14): "IUDatePString",
	packTrapID(0x09ED, 16): "IUTimePString",
	packTrapID(0x09EE, 4): "CStr2Dec",
	packTrapID(0x09EE, 0): "NumToString",
	packTrapID(0x09EE, 1): "StringToNum",
	packTrapID(0x09EE, 3): "Dec2Str",
	packTrapID(0x09EE, 2): "PStr2Dec",
	packTrapID(0x0060, 1): "PBOpenWD",
	packTrapID(0x0060, 2): "PBCloseWD",
	packTrapID(0x0060, 5): "PBCatMove",
	packTrapID(0x0060, 6): "PBDirCreate",
	packTrapID(0x0060, 7): "PBGetWDInfo",
	packTrapID(0x0060, 8): "PBGetFCBInfo",
	packTrapID(0x0060, 9): "PBGetCatInfo",
	packTrapID(0x0060, 10): "PBSetCatInfo",
	packTrapID(0x0060, 11): "PBSetVInfo",
	packTrapID(0x0060, 16): "PBLockRange",
	packTrapID(0x0060, 17): "PBUnlockRange",
	packTrapID(0x0060, 20): "PBCreateFileIDRef",
	packTrapID(0x0060, 21): "PBDeleteFileIDRef",
	packTrapID(0x0060, 22): "PBResolveFileIDRef/LockRng",
	packTrapID(0x0060, 23): "PBExchangeFiles/UnlockRng",
	packTrapID(0x0060, 24): "PBCatSearch",
	packTrapID(0x0060, 26): "PBHOpenDF",
	packTrapID(0x0060, 27): "PBMakeFSSpec",
	packTrapID(0x0060, 48): "PBHGetVolParms",
	packTrapID(0x0060, 49): "PBHGetLogInInfo",
	packTrapID(0x0060, 50): "PBHGetDirAccess",
	packTrapID(0x0060, 51): "PBHSetDirAccess",
	packTrapID(0x0060, 52): "PBHMapID",
	packTrapID(0x0060, 53): "PBHMapName",
	packTrapID(0x0060, 54): "PBHCopyFile",
	packTrapID(0x0060, 55): "PBHMoveRename",
	packTrapID(0x0060, 56): "PBHOpenDeny",
	packTrapID(0x0060, 57): "PBHOpenRFDeny",
	packTrapID(0x0060, 63): "PBGetVolMountInfoSize",
	packTrapID(0x0060, 64): "PBGetVolMountInfo",
	packTrapID(0x0060, 65): "PBVolumeMount",
	packTrapID(0x0060, 66): "PBShare",
	packTrapID(0x0060, 67): "PBUnshare",
	packTrapID(0x0060, 68): "PBGetUGEntry",
	packTrapID(0x0060, 96): "PBGetForeignPrivs",
	packTrapID(0x0060, 97): "PBSetForeignPrivs",
	packTrapID(0x0815, 0): "SCSIReset",
	packTrapID(0x0815, 1): "SCSIGet",
	packTrapID(0x0815, 2): "SCSISelect",
	packTrapID(0x0815, 3): "SCSICmd",
	packTrapID(0x0815, 4): "SCSIComplete",
	packTrapID(0x0815, 5): "SCSIRead",
	packTrapID(0x0815, 6): "SCSIWrite",
	packTrapID(0x0815, 7): "SCSIInstall",
	packTrapID(0x0815, 8): "SCSIRBlind",
	packTrapID(0x0815, 9): "SCSIWBlind",
	packTrapID(0x0815, 10): "SCSIStat",
	packTrapID(0x0815, 11): "SCSISelAtn",
	packTrapID(0x0815, 12): "SCSIMsgIn",
	packTrapID(0x0815, 13): "SCSIMsgOut",
	packTrapID(0x007F, 0): "SetTimeout",
	packTrapID(0x007F, 1): "GetTimeout",
	packTrapID(0x08B5, 0): "smFontScript",
	packTrapID(0x08B5, 2): "smIntlScript",
	packTrapID(0x08B5, 4): "smKybdScript",
	packTrapID(0x08B5, 6): "smFont2Script",
	packTrapID(0x08B5, 8): "smGetEnvirons",
	packTrapID(0x08B5, 10): "smSetEnvirons",
	packTrapID(0x08B5, 12): "smGetScript",
	packTrapID(0x08B5, 14): "smSetScript",
	packTrapID(0x08B5, 16): "smCharByte",
	packTrapID(0x08B5, 18): "smCharType",
	packTrapID(0x08B5, 20): "smPixel2Char",
	packTrapID(0x08B5, 22): "smChar2Pixel",
	packTrapID(0x08B5, 24): "smTranslit",
	packTrapID(0x08B5, 26): "smFindWord",
	packTrapID(0x08B5, 28): "smHiliteText",
	packTrapID(0x08B5, 30): "smDrawJust",
	packTrapID(0x08B5, 32): "smMeasureJust",
	packTrapID(0x0895, 1): "ShutDwnPower",
	packTrapID(0x0895, 2): "ShutDwnStart",
	packTrapID(0x0895, 3): "ShutDwnInstall",
	packTrapID(0x0895, 4): "ShutDwnRemove",
	packTrapID(0x006E, 0): "sReadByte",
	packTrapID(0x006E, 1): "sReadWord",
	packTrapID(0x006E, 2): "sReadLong",
	packTrapID(0x006E, 3): "sGetcString",
	packTrapID(0x006E, 5): "sGetBlock",
	packTrapID(0x006E, 6): "sFindStruct",
	packTrapID(0x006E, 7): "sReadStruct",
	packTrapID(0x006E, 16): "sReadInfo",
	packTrapID(0x006E, 17): "sReadPRAMRec",
	packTrapID(0x006E, 18): "sPutPRAMRec",
	packTrapID(0x006E, 19): "sReadFHeader",
	packTrapID(0x006E, 20): "sNextRsrc",
	packTrapID(0x006E, 21): "sNextTypesRsrc",
	packTrapID(0x006E, 22): "sRsrcInfo",
	packTrapID(0x006E, 23): "sDisposePtr",
	packTrapID(0x006E, 24): "sCkCardStatus",
	packTrapID(0x006E, 25): "sReadDrvrName",
	packTrapID(0x006E, 27): "sFindDevBase",
	packTrapID(0x006E, 32): "InitSDec1Mgr",
	packTrapID(0x006E, 33): "sPrimaryInit",
	packTrapID(0x006E, 34): "sCardChanged",
	packTrapID(0x006E, 35): "sExec",
	packTrapID(0x006E, 36): "sOffsetData",
	packTrapID(0x006E, 37): "InitPRAMRecs",
	packTrapID(0x006E, 38): "sReadPBSize",
	packTrapID(0x006E, 40): "sCalcStep",
	packTrapID(0x006E, 41): "InitsRsrcTable",
	packTrapID(0x006E, 42): "sSearchSRT",
	packTrapID(0x006E, 43): "sUpdateSRT",
	packTrapID(0x006E, 44): "sCalcsPointer",
	packTrapID(0x006E, 45): "sGetDriver",
	packTrapID(0x006E, 46): "sPtrToSlot",
	packTrapID(0x006E, 47): "sFindsInfoRecPtr",
	packTrapID(0x006E, 48): "sFindsRsrcPtr",
	packTrapID(0x006E, 49): "sdeleteSRTRec",
}

// NameForTrap returns the symbolic name of a trap number, or "" if
// unknown.
func NameForTrap(trapNum uint16) string {
	if trapNum >= 0x800 {
		return toolboxTrapNames[trapNum]
	}
	return osTrapNames[trapNum]
}

// NameForPackTrap returns the subroutine name for a dispatch-style trap
// and selector, or "".
func NameForPackTrap(parentTrapNum uint16, subroutineNum uint32) string {
	return packTrapNames[packTrapID(parentTrapNum, subroutineNum)]
}

// InfoForTrap resolves a trap number (and call flags) to its info record,
// or nil if the trap is unknown. Flags currently do not select different
// names but are accepted for call-site symmetry with the disassembler.
func InfoForTrap(trapNum uint16, flags uint8) *TrapInfo {
	_ = flags
	if name := NameForTrap(trapNum); name != "" {
		return &TrapInfo{Name: name}
	}
	return nil
}
